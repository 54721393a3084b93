package enrollment_test

import (
	"context"
	"testing"

	"github.com/mind-engage/mindengage-quiz/internal/db"
	"github.com/mind-engage/mindengage-quiz/internal/enrollment"
)

func TestRoster_ActiveOnly(t *testing.T) {
	ctx := context.Background()
	dbh, err := db.Open(ctx, db.DriverSQLite, "file:TestRoster_ActiveOnly?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer dbh.Close()

	rosters := map[string]enrollment.Roster{
		"memory": enrollment.NewInMemoryRoster(),
		"sql":    enrollment.NewSQLRoster(dbh),
	}
	for name, r := range rosters {
		t.Run(name, func(t *testing.T) {
			if err := r.Enroll(ctx, "c1", []string{"alice", " ", "bob"}, ""); err != nil {
				t.Fatalf("enroll: %v", err)
			}
			if err := r.Enroll(ctx, "c1", []string{"carol"}, "INVITED"); err != nil {
				t.Fatalf("enroll invited: %v", err)
			}

			cases := []struct {
				student, course string
				want            bool
			}{
				{"alice", "c1", true},
				{"bob", "c1", true},
				{"carol", "c1", false},
				{"alice", "c2", false},
				{"dave", "c1", false},
			}
			for _, c := range cases {
				got, err := r.IsActive(ctx, c.student, c.course)
				if err != nil {
					t.Fatalf("IsActive: %v", err)
				}
				if got != c.want {
					t.Errorf("IsActive(%s, %s) = %v; want %v", c.student, c.course, got, c.want)
				}
			}

			// dropping flips membership off
			if err := r.Enroll(ctx, "c1", []string{"bob"}, enrollment.StatusDropped); err != nil {
				t.Fatalf("drop: %v", err)
			}
			if ok, _ := r.IsActive(ctx, "bob", "c1"); ok {
				t.Fatalf("dropped student still active")
			}
		})
	}
}
