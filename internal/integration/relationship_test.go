package integration

import (
	"context"
	"testing"

	"recordhub/internal/core"
	"recordhub/internal/events"
	"recordhub/pkg/domain"
)

func strPtr(v string) *string {
	return &v
}

// TestIntegrationMeetupRelationships builds the meetup graph through the
// engine and walks every relation in both directions.
func TestIntegrationMeetupRelationships(t *testing.T) {
	ctx := context.Background()
	bus := events.NewBus()
	defer bus.Close()
	svc := core.NewInMemoryService(bus)
	res := svc.Resolver()

	host, err := svc.CreateUser(ctx, domain.UserInput{Username: "ada", Email: "ada@example.com"})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	guest, err := svc.CreateUser(ctx, domain.UserInput{Username: "grace", Email: "grace@example.com"})
	if err != nil {
		t.Fatalf("create guest: %v", err)
	}
	hall, err := svc.CreateLocation(ctx, domain.LocationInput{Name: "Hall", Desc: "Main hall"})
	if err != nil {
		t.Fatalf("create location: %v", err)
	}
	meetup, err := svc.CreateEvent(ctx, domain.EventInput{
		Title: "Go night", Desc: "Talks", Date: "2024-05-01",
		LocationID: strPtr(hall.ID), UserID: host.ID,
	})
	if err != nil {
		t.Fatalf("create event: %v", err)
	}
	remote, err := svc.CreateEvent(ctx, domain.EventInput{Title: "Online", Desc: "Stream", Date: "2024-06-01", UserID: host.ID})
	if err != nil {
		t.Fatalf("create remote event: %v", err)
	}
	seat, err := svc.CreateParticipant(ctx, domain.ParticipantInput{UserID: guest.ID, EventID: meetup.ID})
	if err != nil {
		t.Fatalf("create participant: %v", err)
	}

	if u, ok := res.EventUser(meetup); !ok || u.ID != host.ID {
		t.Fatalf("event user = %+v %v", u, ok)
	}
	if l, ok := res.EventLocation(meetup); !ok || l.ID != hall.ID {
		t.Fatalf("event location = %+v %v", l, ok)
	}
	if _, ok := res.EventLocation(remote); ok {
		t.Fatalf("remote event has no location")
	}
	if ps := res.EventParticipants(meetup.ID); len(ps) != 1 || ps[0].ID != seat.ID {
		t.Fatalf("event participants = %+v", ps)
	}
	if evs := res.UserEvents(host.ID); len(evs) != 2 || evs[0].ID != meetup.ID || evs[1].ID != remote.ID {
		t.Fatalf("user events = %+v", evs)
	}
	if ps := res.UserParticipations(guest.ID); len(ps) != 1 {
		t.Fatalf("user participations = %+v", ps)
	}
	if evs := res.LocationEvents(hall.ID); len(evs) != 1 || evs[0].ID != meetup.ID {
		t.Fatalf("location events = %+v", evs)
	}
	if u, ok := res.ParticipantUser(seat); !ok || u.ID != guest.ID {
		t.Fatalf("participant user = %+v %v", u, ok)
	}
	if e, ok := res.ParticipantEvent(seat); !ok || e.ID != meetup.ID {
		t.Fatalf("participant event = %+v %v", e, ok)
	}

	// Deleting the location leaves the dangling reference unresolved.
	if _, err := svc.DeleteLocation(ctx, hall.ID); err != nil {
		t.Fatalf("delete location: %v", err)
	}
	if _, ok := res.EventLocation(meetup); ok {
		t.Fatalf("deleted location must not resolve")
	}

	include, err := core.ParseInclude("user,participants.user,location")
	if err != nil {
		t.Fatalf("parse include: %v", err)
	}
	tree, err := svc.Expand(ctx, meetup, include)
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	if tree["location"] != nil {
		t.Fatalf("expected null location, got %v", tree["location"])
	}
	parts := tree["participants"].([]map[string]any)
	if len(parts) != 1 || parts[0]["user"].(map[string]any)["username"] != "grace" {
		t.Fatalf("unexpected participants %v", parts)
	}
}
