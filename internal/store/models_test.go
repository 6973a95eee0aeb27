package store

import (
	"database/sql"
	"testing"
	"time"
)

func TestTeamName(t *testing.T) {
	t.Parallel()

	team := &Team{City: "Golden State", Nickname: "Warriors"}
	if got := team.Name(); got != "Golden State Warriors" {
		t.Errorf("Name() = %q", got)
	}
}

func TestPlayerAge(t *testing.T) {
	t.Parallel()

	p := &Player{
		FirstName: "Tim",
		LastName:  "Duncan",
		BirthDate: sql.NullTime{Time: time.Date(1976, 4, 25, 0, 0, 0, 0, time.UTC), Valid: true},
	}

	tests := []struct {
		now  time.Time
		want int
	}{
		{time.Date(2014, 4, 24, 0, 0, 0, 0, time.UTC), 37},
		{time.Date(2014, 4, 25, 0, 0, 0, 0, time.UTC), 38},
		{time.Date(2014, 12, 1, 0, 0, 0, 0, time.UTC), 38},
	}
	for _, tt := range tests {
		got, ok := p.Age(tt.now)
		if !ok || got != tt.want {
			t.Errorf("Age(%s) = %d, %v; want %d", tt.now.Format(time.DateOnly), got, ok, tt.want)
		}
	}

	if _, ok := (&Player{LastName: "Nene"}).Age(time.Now()); ok {
		t.Error("Age without birth date should not be ok")
	}
	if got := (&Player{LastName: "Nene"}).FullName(); got != "Nene" {
		t.Errorf("FullName() = %q, want Nene", got)
	}
}

func TestGameWinner(t *testing.T) {
	t.Parallel()

	g := &Game{
		HomeTeamID: 1, AwayTeamID: 2,
		HomeScore: NullInt32(101, true), AwayScore: NullInt32(99, true),
		Status: GameStatusFinal,
	}
	if id, ok := g.Winner(); !ok || id != 1 {
		t.Errorf("Winner() = %d, %v; want 1, true", id, ok)
	}

	g.Status = GameStatusScheduled
	if _, ok := g.Winner(); ok {
		t.Error("scheduled game should have no winner")
	}
}

func TestMigrationNamesSorted(t *testing.T) {
	t.Parallel()

	names, err := MigrationNames()
	if err != nil {
		t.Fatalf("MigrationNames: %v", err)
	}
	if len(names) == 0 {
		t.Fatal("no embedded migrations")
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Errorf("migrations out of order: %s before %s", names[i-1], names[i])
		}
	}
	if names[0] != "001_create_organization.sql" {
		t.Errorf("first migration = %s", names[0])
	}
}
