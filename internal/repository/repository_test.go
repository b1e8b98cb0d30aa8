package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"pokerly/internal/database"
	"pokerly/internal/domain"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	// a second connection would see a different empty in-memory database
	db.SetMaxOpenConns(1)

	if err := database.Migrate(db, zerolog.Nop()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func datePtr(year int, month time.Month, d int) *time.Time {
	t := time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func int64Ptr(v int64) *int64 { return &v }

func newSession(userID, title string, playDate *time.Time, buyIn, prize int64) *domain.Session {
	profit := prize - buyIn
	return &domain.Session{
		UserID:      userID,
		PlayDate:    playDate,
		Title:       title,
		SessionType: domain.SessionTypeVenue,
		TotalBuyIn:  &buyIn,
		Prize:       &prize,
		NetProfit:   &profit,
	}
}

func TestSessionCreateAndGet(t *testing.T) {
	db := openTestDB(t)
	repo := NewSessionRepository(db, zerolog.Nop())
	ctx := context.Background()

	session := newSession("u1", "Friday deepstack", datePtr(2026, time.April, 3), 1000, 2500)
	session.FieldEntries = int64Ptr(120)
	if err := repo.Create(ctx, session); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if session.ID == "" {
		t.Fatal("Create did not assign an id")
	}

	got, err := repo.GetByID(ctx, "u1", session.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Title != "Friday deepstack" || got.SessionType != domain.SessionTypeVenue {
		t.Errorf("got = %+v", got)
	}
	if got.PlayDate == nil || !got.PlayDate.Equal(*session.PlayDate) {
		t.Errorf("playDate = %v, want %v", got.PlayDate, session.PlayDate)
	}
	if domain.OrZero(got.NetProfit) != 1500 || domain.OrZero(got.FieldEntries) != 120 {
		t.Errorf("numbers = %+v", got)
	}
}

func TestSessionGetScopedToUser(t *testing.T) {
	db := openTestDB(t)
	repo := NewSessionRepository(db, zerolog.Nop())
	ctx := context.Background()

	session := newSession("u1", "private", datePtr(2026, time.April, 3), 100, 0)
	if err := repo.Create(ctx, session); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := repo.GetByID(ctx, "u2", session.ID); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("cross-user GetByID err = %v, want sql.ErrNoRows", err)
	}
}

func TestSessionUpdate(t *testing.T) {
	db := openTestDB(t)
	repo := NewSessionRepository(db, zerolog.Nop())
	ctx := context.Background()

	session := newSession("u1", "before", datePtr(2026, time.April, 3), 100, 0)
	if err := repo.Create(ctx, session); err != nil {
		t.Fatalf("Create: %v", err)
	}

	session.Title = "after"
	session.Prize = int64Ptr(700)
	session.NetProfit = int64Ptr(600)
	if err := repo.Update(ctx, session); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, err := repo.GetByID(ctx, "u1", session.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Title != "after" || domain.OrZero(got.NetProfit) != 600 {
		t.Errorf("got = %+v", got)
	}
}

func TestSessionUpdateMissingRow(t *testing.T) {
	db := openTestDB(t)
	repo := NewSessionRepository(db, zerolog.Nop())

	ghost := newSession("u1", "ghost", nil, 0, 0)
	ghost.ID = "no-such-row"
	if err := repo.Update(context.Background(), ghost); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("err = %v, want sql.ErrNoRows", err)
	}
}

func TestSessionDelete(t *testing.T) {
	db := openTestDB(t)
	repo := NewSessionRepository(db, zerolog.Nop())
	ctx := context.Background()

	session := newSession("u1", "gone", datePtr(2026, time.April, 3), 100, 0)
	if err := repo.Create(ctx, session); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.Delete(ctx, "u1", session.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.GetByID(ctx, "u1", session.ID); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("err after delete = %v, want sql.ErrNoRows", err)
	}
	if err := repo.Delete(ctx, "u1", session.ID); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("second delete err = %v, want sql.ErrNoRows", err)
	}
}

func TestSessionListOrderings(t *testing.T) {
	db := openTestDB(t)
	repo := NewSessionRepository(db, zerolog.Nop())
	ctx := context.Background()

	undated := newSession("u1", "undated", nil, 100, 0)
	late := newSession("u1", "late", datePtr(2026, time.April, 20), 100, 0)
	early := newSession("u1", "early", datePtr(2026, time.March, 5), 100, 0)
	mid := newSession("u1", "mid", datePtr(2026, time.April, 1), 100, 0)
	other := newSession("u2", "other user", datePtr(2026, time.April, 1), 100, 0)
	for _, s := range []*domain.Session{undated, late, early, mid, other} {
		if err := repo.Create(ctx, s); err != nil {
			t.Fatalf("Create %s: %v", s.Title, err)
		}
	}

	all, err := repo.ListByUser(ctx, "u1")
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("ListByUser len = %d, want 4", len(all))
	}
	// dated ascending, undated rows trail
	if all[0].Title != "early" || all[1].Title != "mid" || all[2].Title != "late" || all[3].Title != "undated" {
		t.Errorf("ListByUser order = %s,%s,%s,%s", all[0].Title, all[1].Title, all[2].Title, all[3].Title)
	}

	april, err := repo.ListByUserBetween(ctx, "u1",
		time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.April, 30, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("ListByUserBetween: %v", err)
	}
	if len(april) != 2 || april[0].Title != "mid" || april[1].Title != "late" {
		t.Errorf("ListByUserBetween = %+v", april)
	}

	recent, err := repo.ListRecent(ctx, "u1", 2)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if len(recent) != 2 || recent[0].Title != "late" || recent[1].Title != "mid" {
		t.Errorf("ListRecent = %+v", recent)
	}
}

func TestSessionListVenueSessions(t *testing.T) {
	db := openTestDB(t)
	sessions := NewSessionRepository(db, zerolog.Nop())
	venues := NewVenueRepository(db, zerolog.Nop())
	ctx := context.Background()

	venue := &domain.Venue{UserID: "u1", Name: "Grand Casino"}
	if err := venues.Create(ctx, venue); err != nil {
		t.Fatalf("Create venue: %v", err)
	}

	atVenue := newSession("u1", "at venue", datePtr(2026, time.April, 3), 100, 0)
	atVenue.VenueID = &venue.ID
	online := newSession("u1", "online", datePtr(2026, time.April, 4), 100, 0)
	online.SessionType = domain.SessionTypeOnline
	for _, s := range []*domain.Session{atVenue, online} {
		if err := sessions.Create(ctx, s); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	got, err := sessions.ListVenueSessions(ctx, "u1")
	if err != nil {
		t.Fatalf("ListVenueSessions: %v", err)
	}
	if len(got) != 1 || got[0].Title != "at venue" {
		t.Errorf("ListVenueSessions = %+v", got)
	}
}

func TestSessionListHonorsContext(t *testing.T) {
	db := openTestDB(t)
	repo := NewSessionRepository(db, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := repo.ListByUser(ctx, "u1"); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestJournalUpsertIdempotentPerDate(t *testing.T) {
	db := openTestDB(t)
	repo := NewJournalRepository(db, zerolog.Nop())
	ctx := context.Background()

	date := time.Date(2026, time.April, 3, 0, 0, 0, 0, time.UTC)
	first := &domain.Journal{
		UserID:      "u1",
		JournalDate: date,
		Title:       "rough day",
		MoodScore:   int64Ptr(2),
		TiltScore:   int64Ptr(5),
	}
	if err := repo.Upsert(ctx, first); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	second := &domain.Journal{
		UserID:      "u1",
		JournalDate: date,
		Title:       "cooled off",
		MoodScore:   int64Ptr(4),
		TiltScore:   int64Ptr(1),
	}
	if err := repo.Upsert(ctx, second); err != nil {
		t.Fatalf("second Upsert: %v", err)
	}
	// the conflicting upsert reports the stored row's id, not the discarded
	// candidate id
	if second.ID != first.ID {
		t.Errorf("second upsert id = %s, want stored %s", second.ID, first.ID)
	}

	got, err := repo.GetByDate(ctx, "u1", date)
	if err != nil {
		t.Fatalf("GetByDate: %v", err)
	}
	if got.Title != "cooled off" || domain.OrZero(got.MoodScore) != 4 || domain.OrZero(got.TiltScore) != 1 {
		t.Errorf("got = %+v, second write did not win", got)
	}
	// the conflict clause keeps the original row, not a second one
	if got.ID != first.ID {
		t.Errorf("id = %s, want original %s", got.ID, first.ID)
	}

	all, err := repo.ListByUser(ctx, "u1")
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("journal count = %d, want 1", len(all))
	}
}

func TestJournalListOrderedByDate(t *testing.T) {
	db := openTestDB(t)
	repo := NewJournalRepository(db, zerolog.Nop())
	ctx := context.Background()

	for _, d := range []int{10, 2, 25} {
		journal := &domain.Journal{
			UserID:      "u1",
			JournalDate: time.Date(2026, time.April, d, 0, 0, 0, 0, time.UTC),
			Title:       "entry",
		}
		if err := repo.Upsert(ctx, journal); err != nil {
			t.Fatalf("Upsert: %v", err)
		}
	}

	all, err := repo.ListByUser(ctx, "u1")
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("len = %d, want 3", len(all))
	}
	if all[0].JournalDate.Day() != 2 || all[1].JournalDate.Day() != 10 || all[2].JournalDate.Day() != 25 {
		t.Errorf("order = %d,%d,%d", all[0].JournalDate.Day(), all[1].JournalDate.Day(), all[2].JournalDate.Day())
	}
}

func TestJournalDelete(t *testing.T) {
	db := openTestDB(t)
	repo := NewJournalRepository(db, zerolog.Nop())
	ctx := context.Background()

	date := time.Date(2026, time.April, 3, 0, 0, 0, 0, time.UTC)
	journal := &domain.Journal{UserID: "u1", JournalDate: date, Title: "entry"}
	if err := repo.Upsert(ctx, journal); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := repo.Delete(ctx, "u1", date); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.GetByDate(ctx, "u1", date); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("err after delete = %v, want sql.ErrNoRows", err)
	}
	if err := repo.Delete(ctx, "u1", date); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("second delete err = %v, want sql.ErrNoRows", err)
	}
}

func TestVenueCRUD(t *testing.T) {
	db := openTestDB(t)
	repo := NewVenueRepository(db, zerolog.Nop())
	ctx := context.Background()

	venue := &domain.Venue{UserID: "u1", Name: "Grand Casino", Location: "Downtown"}
	if err := repo.Create(ctx, venue); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if venue.VenueType != "USER_PRIVATE" {
		t.Errorf("venueType = %q, want default USER_PRIVATE", venue.VenueType)
	}

	venue.Name = "Grand Casino North"
	venue.PointBalance = 350
	if err := repo.Update(ctx, venue); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, err := repo.GetByID(ctx, "u1", venue.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Name != "Grand Casino North" || got.PointBalance != 350 {
		t.Errorf("got = %+v", got)
	}

	if err := repo.Delete(ctx, "u1", venue.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.GetByID(ctx, "u1", venue.ID); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("err after delete = %v, want sql.ErrNoRows", err)
	}
}

func TestVenueListWithPoints(t *testing.T) {
	db := openTestDB(t)
	repo := NewVenueRepository(db, zerolog.Nop())
	ctx := context.Background()

	small := &domain.Venue{UserID: "u1", Name: "Small", PointBalance: 50}
	big := &domain.Venue{UserID: "u1", Name: "Big", PointBalance: 900}
	empty := &domain.Venue{UserID: "u1", Name: "Empty"}
	for _, v := range []*domain.Venue{small, big, empty} {
		if err := repo.Create(ctx, v); err != nil {
			t.Fatalf("Create %s: %v", v.Name, err)
		}
	}

	got, err := repo.ListWithPoints(ctx, "u1")
	if err != nil {
		t.Fatalf("ListWithPoints: %v", err)
	}
	if len(got) != 2 || got[0].Name != "Big" || got[1].Name != "Small" {
		t.Errorf("ListWithPoints = %+v", got)
	}
}

func TestVenueNamesByIDs(t *testing.T) {
	db := openTestDB(t)
	repo := NewVenueRepository(db, zerolog.Nop())
	ctx := context.Background()

	alpha := &domain.Venue{UserID: "u1", Name: "Alpha"}
	beta := &domain.Venue{UserID: "u1", Name: "Beta"}
	for _, v := range []*domain.Venue{alpha, beta} {
		if err := repo.Create(ctx, v); err != nil {
			t.Fatalf("Create %s: %v", v.Name, err)
		}
	}

	names, err := repo.NamesByIDs(ctx, []string{alpha.ID, beta.ID, "deleted"})
	if err != nil {
		t.Fatalf("NamesByIDs: %v", err)
	}
	if len(names) != 2 || names[alpha.ID] != "Alpha" || names[beta.ID] != "Beta" {
		t.Errorf("names = %v", names)
	}
	if _, ok := names["deleted"]; ok {
		t.Error("unknown id resolved to a name")
	}

	empty, err := repo.NamesByIDs(ctx, nil)
	if err != nil {
		t.Fatalf("NamesByIDs(nil): %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("names for no ids = %v", empty)
	}
}
