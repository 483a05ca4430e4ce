// Package demo writes a sample project into the local cache so the board can be tried
// without a Plane workspace.
package demo

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/Arcodify/obsidian-plane-plugin/internal/database/repository"
)

// Workspace is the workspace slug demo projects are filed under.
const Workspace = "demo"

// Repos bundles repos used by Seed.
type Repos struct {
	Projects  *repository.ProjectRepo
	Snapshots *repository.SnapshotRepo
}

// Seed creates a sample project and returns its id. seed makes the item layout
// reproducible.
func Seed(ctx context.Context, repos Repos, seed int64) (string, error) {
	rng := rand.New(rand.NewSource(seed))

	proj := repository.Project{ID: uuid.NewString(), Workspace: Workspace, Name: "Demo Board", Identifier: "DEMO"}
	if err := repos.Projects.Upsert(ctx, proj); err != nil {
		return "", err
	}

	type st struct{ name, color, group string }
	stateDefs := []st{
		{"Backlog", "#a3a3a3", "backlog"},
		{"Todo", "#3a3a3a", "unstarted"},
		{"In Progress", "#f59e0b", "started"},
		{"Done", "#16a34a", "completed"},
		{"Cancelled", "#ef4444", "cancelled"},
	}
	var data repository.ProjectData
	for i, d := range stateDefs {
		color := d.color
		data.States = append(data.States, repository.State{
			ID:        uuid.NewString(),
			ProjectID: proj.ID,
			Name:      d.name,
			Color:     &color,
			Group:     d.group,
			Sequence:  float64((i + 1) * 15000),
		})
	}
	for _, name := range []string{"Onboarding", "Billing", "Mobile"} {
		data.Modules = append(data.Modules, repository.Module{ID: uuid.NewString(), ProjectID: proj.ID, Name: name})
	}

	titles := []string{
		"Sign-up email copy", "Invoice PDF layout", "Push notification opt-in",
		"Retry failed card charges", "Empty state illustrations", "Offline mode for lists",
		"Tax ID validation", "Password reset flow", "Dark mode colors",
		"Proration on plan change", "Deep links from email", "Welcome checklist",
	}
	priorities := []string{"urgent", "high", "medium", "low", "none"}
	now := time.Now().UTC()
	for i, title := range titles {
		item := repository.WorkItem{
			ID:         uuid.NewString(),
			ProjectID:  proj.ID,
			Name:       title,
			SequenceID: i + 1,
			UpdatedAt:  now.Add(-time.Duration(rng.Intn(72)) * time.Hour),
		}
		ident := fmt.Sprintf("%s-%d", proj.Identifier, i+1)
		item.Identifier = &ident
		prio := priorities[rng.Intn(len(priorities))]
		item.Priority = &prio

		// A few items carry only the legacy references, and one has no state at all.
		state := data.States[rng.Intn(len(data.States))].ID
		switch {
		case i == len(titles)-1:
		case i%4 == 3:
			item.State = &state
		default:
			item.StateID = &state
		}
		if n := rng.Intn(len(data.Modules) + 1); n < len(data.Modules) {
			mod := data.Modules[n].ID
			if i%5 == 4 {
				item.ModuleID = &mod
			} else {
				item.Module = &mod
			}
		}
		data.WorkItems = append(data.WorkItems, item)
	}

	if err := repos.Snapshots.Replace(ctx, proj.ID, data, now); err != nil {
		return "", err
	}
	return proj.ID, nil
}
