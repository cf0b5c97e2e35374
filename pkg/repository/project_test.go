package repository_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/cybergard/ebiosgard/pkg/domain/interfaces"
	"github.com/cybergard/ebiosgard/pkg/domain/model"
	"github.com/cybergard/ebiosgard/pkg/domain/types"
	"github.com/cybergard/ebiosgard/pkg/repository/firestore"
	"github.com/cybergard/ebiosgard/pkg/repository/memory"
)

func newMemoryRepository(t *testing.T) interfaces.Repository {
	t.Helper()
	return memory.New()
}

func newFirestoreRepository(t *testing.T) interfaces.Repository {
	t.Helper()

	projectID := os.Getenv("TEST_FIRESTORE_PROJECT_ID")
	if projectID == "" {
		t.Skip("TEST_FIRESTORE_PROJECT_ID not set")
	}
	databaseID := os.Getenv("TEST_FIRESTORE_DATABASE_ID")
	if databaseID == "" {
		t.Skip("TEST_FIRESTORE_DATABASE_ID not set")
	}

	repo, err := firestore.New(context.Background(), projectID, databaseID)
	if err != nil {
		t.Fatalf("failed to create firestore repository: %v", err)
	}
	t.Cleanup(func() {
		if err := repo.Close(); err != nil {
			t.Logf("failed to close firestore repository: %v", err)
		}
	})
	return repo
}

func runProjectRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Create and Get round-trip", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		project := model.NewProject("Hospital information system", "Regional hospital", "healthcare")
		if err := repo.Project().Create(ctx, project); err != nil {
			t.Fatalf("failed to create project: %v", err)
		}

		got, err := repo.Project().Get(ctx, project.ID)
		if err != nil {
			t.Fatalf("failed to get project: %v", err)
		}
		if got.Name != project.Name {
			t.Errorf("expected name=%s, got %s", project.Name, got.Name)
		}
		if got.Status != types.ProjectDraft {
			t.Errorf("expected draft status, got %s", got.Status)
		}
	})

	t.Run("Get unknown project returns ErrNotFound", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Project().Get(ctx, types.NewProjectID())
		if !errors.Is(err, types.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("UpdateStatus transitions lifecycle", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		project := model.NewProject("Payment platform", "", "finance")
		if err := repo.Project().Create(ctx, project); err != nil {
			t.Fatalf("failed to create project: %v", err)
		}

		if err := repo.Project().UpdateStatus(ctx, project.ID, types.ProjectFrozen); err != nil {
			t.Fatalf("failed to update status: %v", err)
		}

		got, err := repo.Project().Get(ctx, project.ID)
		if err != nil {
			t.Fatalf("failed to get project: %v", err)
		}
		if got.Status != types.ProjectFrozen {
			t.Errorf("expected frozen status, got %s", got.Status)
		}
	})

	t.Run("Workshop Put and ListByProject in pipeline order", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		project := model.NewProject("SCADA network", "", "energy")
		if err := repo.Project().Create(ctx, project); err != nil {
			t.Fatalf("failed to create project: %v", err)
		}

		// Insert out of order on purpose
		for _, kind := range []types.WorkshopKind{types.WorkshopStrategic, types.WorkshopScoping} {
			if err := repo.Workshop().Put(ctx, model.NewWorkshop(project.ID, kind)); err != nil {
				t.Fatalf("failed to put workshop: %v", err)
			}
		}

		workshops, err := repo.Workshop().ListByProject(ctx, project.ID)
		if err != nil {
			t.Fatalf("failed to list workshops: %v", err)
		}
		if len(workshops) != 2 {
			t.Fatalf("expected 2 workshops, got %d", len(workshops))
		}
		if workshops[0].Kind != types.WorkshopScoping || workshops[1].Kind != types.WorkshopStrategic {
			t.Errorf("expected pipeline order, got %s then %s", workshops[0].Kind, workshops[1].Kind)
		}
	})
}

func TestMemoryProjectRepository(t *testing.T) {
	runProjectRepositoryTest(t, newMemoryRepository)
}

func TestFirestoreProjectRepository(t *testing.T) {
	runProjectRepositoryTest(t, newFirestoreRepository)
}
