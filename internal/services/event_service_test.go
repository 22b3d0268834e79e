package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cupidworks/valentine-backend/internal/models"
)

func TestCreateAndListUpcomingFiltersDraftsAndPast(t *testing.T) {
	db := newTestDB(t)
	svc := NewEventService(db)
	organizer := seedUser(t, db, "org@example.com", "5550009999")

	upcoming, err := svc.Create(context.Background(), organizer.ID, EventInput{
		Title: "Mixer", Description: "d", Date: time.Now().Add(24 * time.Hour),
		Location: "Hall", Capacity: 50,
	})
	require.NoError(t, err)
	require.Equal(t, models.EventStatusPublished, upcoming.Status)

	_, err = svc.Create(context.Background(), organizer.ID, EventInput{
		Title: "Draft", Description: "d", Date: time.Now().Add(24 * time.Hour),
		Location: "Hall", Capacity: 50, Status: models.EventStatusDraft,
	})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), organizer.ID, EventInput{
		Title: "Past", Description: "d", Date: time.Now().Add(-24 * time.Hour),
		Location: "Hall", Capacity: 50,
	})
	require.NoError(t, err)

	events, err := svc.ListUpcoming(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, "Mixer", events[0].Title)
}

func TestCreateRejectsNonPositiveCapacity(t *testing.T) {
	db := newTestDB(t)
	svc := NewEventService(db)

	_, err := svc.Create(context.Background(), "org", EventInput{
		Title: "Bad", Description: "d", Date: time.Now(), Location: "Hall", Capacity: 0,
	})
	require.Error(t, err)
}

func TestUpdateRefusesCapacityBelowBookings(t *testing.T) {
	db := newTestDB(t)
	svc := NewEventService(db)
	tickets := NewTicketService(db)
	organizer := seedUser(t, db, "org@example.com", "5550009999")

	event, err := svc.Create(context.Background(), organizer.ID, EventInput{
		Title: "Mixer", Description: "d", Date: time.Now().Add(24 * time.Hour),
		Location: "Hall", Capacity: 2,
	})
	require.NoError(t, err)

	g1 := seedUser(t, db, "g1@example.com", "5550001111")
	g2 := seedUser(t, db, "g2@example.com", "5550002222")
	_, err = tickets.RSVP(context.Background(), g1.ID, event.ID)
	require.NoError(t, err)
	_, err = tickets.RSVP(context.Background(), g2.ID, event.ID)
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), event.ID, EventInput{Capacity: 1})
	require.Error(t, err)

	updated, err := svc.Update(context.Background(), event.ID, EventInput{Capacity: 5})
	require.NoError(t, err)
	require.Equal(t, 5, updated.Capacity)
}

func TestCancelMarksEventCancelled(t *testing.T) {
	db := newTestDB(t)
	svc := NewEventService(db)

	event, err := svc.Create(context.Background(), "org", EventInput{
		Title: "Mixer", Description: "d", Date: time.Now().Add(24 * time.Hour),
		Location: "Hall", Capacity: 2,
	})
	require.NoError(t, err)

	require.NoError(t, svc.Cancel(context.Background(), event.ID))

	got, err := svc.Get(context.Background(), event.ID)
	require.NoError(t, err)
	require.Equal(t, models.EventStatusCancelled, got.Status)

	require.Error(t, svc.Cancel(context.Background(), "missing-id"))
}
