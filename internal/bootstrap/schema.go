package bootstrap

import (
	"context"
	"fmt"
	"log"

	"github.com/pulsecs/backend/internal/infrastructure/database"
	"github.com/pulsecs/backend/pkg/constants"
)

// InitializeSchema creates the compiler's tables if they do not exist.
// DDL is idempotent so restarts are safe.
func InitializeSchema(db *database.Connection) error {
	log.Println("🔧 Initializing workflow schema...")

	statements := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id VARCHAR(64) PRIMARY KEY,
			name VARCHAR(255) NOT NULL UNIQUE,
			category VARCHAR(64) NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			base_steps JSON NOT NULL,
			base_artifacts JSON,
			created_date DATETIME NOT NULL,
			last_modified_date DATETIME NOT NULL
		)`, constants.TableTemplate),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id VARCHAR(64) PRIMARY KEY,
			template_id VARCHAR(64) NOT NULL,
			scope_type VARCHAR(32) NOT NULL,
			scope_id VARCHAR(64),
			scope_criteria JSON,
			modification_type VARCHAR(32) NOT NULL,
			target_step_id VARCHAR(255),
			target_position INT,
			modification_data JSON,
			priority INT NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_date DATETIME NOT NULL,
			INDEX idx_mod_template (template_id, is_active)
		)`, constants.TableModification),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id VARCHAR(64) PRIMARY KEY,
			template_id VARCHAR(64) NOT NULL,
			customer_id VARCHAR(64) NOT NULL,
			applied_modification_ids JSON NOT NULL,
			compiled_steps JSON NOT NULL,
			compiled_artifacts JSON,
			warnings JSON,
			status VARCHAR(32) NOT NULL,
			current_step_id VARCHAR(255),
			created_date DATETIME NOT NULL,
			last_modified_date DATETIME NOT NULL,
			INDEX idx_exec_customer (customer_id, created_date)
		)`, constants.TableExecution),
	}

	ctx := context.Background()
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema initialization failed: %w", err)
		}
	}

	log.Println("✅ Workflow schema ready")
	return nil
}
