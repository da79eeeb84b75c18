package seed

import (
	"log/slog"
	"math/rand"

	"github.com/bidwatch-dev/bidwatch/backend/internal/config"
	"github.com/bidwatch-dev/bidwatch/backend/internal/repository"
	"github.com/bidwatch-dev/bidwatch/backend/internal/utils"
)

// Seed fills the database with random users, each carrying a couple of
// schedules and filters. Development only.
func Seed(cfg *config.Config, repo *repository.Repository) {
	for i := 0; i < cfg.Seed.UserCount; i++ {
		email := utils.GenerateRandomEmail("example.com")

		user, err := repo.EnsureUser(email, false)
		if err != nil {
			slog.Error("cannot seed user", "email", email, "error", err)
			continue
		}

		scheduleCount := rand.Intn(2) + 1
		for j := 0; j < scheduleCount; j++ {
			schedule := utils.GenerateRandomSchedule(user.ID)
			if err := repo.CreateSchedule(schedule); err != nil {
				slog.Error("cannot seed schedule", "user", user.Email, "error", err)
			}
		}

		filterCount := rand.Intn(3)
		for j := 0; j < filterCount; j++ {
			filter := utils.GenerateRandomFilter(user.ID)
			if err := repo.CreateFilter(filter); err != nil {
				slog.Error("cannot seed filter", "user", user.Email, "error", err)
			}
		}

		slog.Info("seeded user", "email", user.Email, "schedules", scheduleCount, "filters", filterCount)
	}
}
