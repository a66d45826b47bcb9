package services

import (
	"context"
	"log"

	"github.com/pulsecs/backend/internal/domain/ports"
	"github.com/pulsecs/backend/pkg/errors"
	"github.com/robfig/cron/v3"
)

// SweepService periodically compiles the renewal workflow for customers
// whose contracts are approaching renewal, so a playbook is ready before
// anyone asks for one. One failed customer never stops the sweep.
type SweepService struct {
	compile      *CompileService
	renewals     ports.RenewalSource
	cron         *cron.Cron
	templateName string
	withinDays   int
}

// NewSweepService creates a SweepService compiling templateName for every
// customer due within withinDays.
func NewSweepService(compile *CompileService, renewals ports.RenewalSource, templateName string, withinDays int) *SweepService {
	return &SweepService{
		compile:      compile,
		renewals:     renewals,
		cron:         cron.New(),
		templateName: templateName,
		withinDays:   withinDays,
	}
}

// Start schedules the sweep with a cron expression (e.g. "0 6 * * *").
func (s *SweepService) Start(schedule string) error {
	if _, err := s.cron.AddFunc(schedule, func() {
		s.RunOnce(context.Background())
	}); err != nil {
		return err
	}
	s.cron.Start()
	log.Printf("✅ SweepService: scheduled '%s' sweep (%s)", s.templateName, schedule)
	return nil
}

// Stop halts the scheduler, waiting for a running sweep to finish.
func (s *SweepService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// RunOnce executes a single sweep pass and returns how many compilations
// succeeded.
func (s *SweepService) RunOnce(ctx context.Context) int {
	customerIDs, err := s.renewals.ListCustomersDueForRenewal(ctx, s.withinDays)
	if err != nil {
		log.Printf("❌ SweepService: failed to list customers due for renewal: %v", err)
		return 0
	}

	compiled := 0
	for _, customerID := range customerIDs {
		trigger := map[string]interface{}{"source": "renewal_sweep"}
		if _, err := s.compile.Compile(ctx, s.templateName, customerID, trigger); err != nil {
			if errors.IsNotFound(err) {
				// Template missing means every remaining customer fails too
				log.Printf("❌ SweepService: %v, aborting sweep", err)
				return compiled
			}
			log.Printf("⚠️ SweepService: compilation failed for customer %s: %v", customerID, err)
			continue
		}
		compiled++
	}

	log.Printf("✅ SweepService: compiled %d/%d renewal workflows", compiled, len(customerIDs))
	return compiled
}
