package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/phrazzld/kanban-api/internal/domain"
	"github.com/phrazzld/kanban-api/internal/platform/postgres"
	"github.com/phrazzld/kanban-api/internal/store"
	"golang.org/x/crypto/bcrypt"
)

// seedUserCount is the number of demo users inserted by -seed.
const seedUserCount = 20

// seedPassword is the shared password of every demo user.
const seedPassword = "kanban-demo-password"

var (
	seedFirstNames = []string{"Ada", "Grace", "Alan", "Barbara", "Edsger", "Frances", "Ken", "Margaret", "Dennis", "Radia"}
	seedLastNames  = []string{"Lovelace", "Hopper", "Turing", "Liskov", "Dijkstra", "Allen", "Thompson", "Hamilton", "Ritchie", "Perlman"}
)

// seedTask describes one demo task.
type seedTask struct {
	title       string
	description string
	status      domain.Status
}

var seedTasks = []seedTask{
	{"Design database schema", "Tables for users and tasks", domain.StatusDone},
	{"Build task API", "List, create, update and delete endpoints", domain.StatusInProgress},
	{"Write client sync", "Replay offline edits against the server", domain.StatusTodo},
	{"Add board export", "", domain.StatusTodo},
}

// seedDatabase inserts demo users and tasks in a single transaction.
func seedDatabase(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	return seedWithCost(ctx, db, bcrypt.DefaultCost, time.Now(), logger)
}

func seedWithCost(ctx context.Context, db *sql.DB, cost int, now time.Time, logger *slog.Logger) error {
	users := postgres.NewPostgresUserStore(db, cost, logger)
	tasks := postgres.NewPostgresTaskStore(db, logger)

	err := store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
		txUsers := users.WithTx(tx)
		for i := 0; i < seedUserCount; i++ {
			first := seedFirstNames[i%len(seedFirstNames)]
			last := seedLastNames[(i/len(seedFirstNames)+i)%len(seedLastNames)]
			email := fmt.Sprintf("%s.%s.%d@example.com", strings.ToLower(first), strings.ToLower(last), i+1)

			// Staggered creation times give the listing a stable newest-first order
			user, err := domain.NewUser(first+" "+last, email, seedPassword, now.Add(time.Duration(i)*time.Second))
			if err != nil {
				return err
			}
			if err := txUsers.Create(ctx, user); err != nil {
				return fmt.Errorf("seed user %s: %w", email, err)
			}
		}

		txTasks := tasks.WithTx(tx)
		for i, st := range seedTasks {
			var description *string
			if st.description != "" {
				description = domain.StringPtr(st.description)
			}
			task, err := domain.NewTask(st.title, description, st.status, now.Add(time.Duration(i)*time.Minute))
			if err != nil {
				return err
			}
			if err := txTasks.Create(ctx, task); err != nil {
				return fmt.Errorf("seed task %q: %w", st.title, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to seed database: %w", err)
	}

	logger.Info("Database seeded", "users", seedUserCount, "tasks", len(seedTasks))
	return nil
}
