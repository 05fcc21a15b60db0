package service

import (
	"context"
	"errors"
	"testing"

	"github.com/slconcert/theatre-system/internal/core/domain"
	"github.com/slconcert/theatre-system/internal/core/ports"
	"github.com/slconcert/theatre-system/internal/infrastructure/db/memory"
)

func TestPlayService_CreateLinksDirectorAndActors(t *testing.T) {
	f := newFixture(t)
	d := f.director("Peter Brook")
	a1, a2 := f.actor("Ann"), f.actor("Ben")

	p := f.play("Hamlet", d.ID, a1.ID, a2.ID, a1.ID)

	assertIDs(t, "play actors", p.Actors, a1.ID, a2.ID)
	assertIDs(t, "director plays", getDoc[domain.Director](t, f.store, domain.CollectionDirectors, d.ID).Plays, p.ID)
	assertIDs(t, "actor 1 plays", getDoc[domain.Actor](t, f.store, domain.CollectionActors, a1.ID).Plays, p.ID)
	assertIDs(t, "actor 2 plays", getDoc[domain.Actor](t, f.store, domain.CollectionActors, a2.ID).Plays, p.ID)
}

func TestPlayService_CreateRejectsUnknownReferences(t *testing.T) {
	f := newFixture(t)
	a := f.actor("Ann")
	ctx := context.Background()

	_, err := f.plays.Create(ctx, ports.CreatePlayInput{Title: "X", Actors: []string{a.ID, "ghost"}})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	_, err = f.plays.Create(ctx, ports.CreatePlayInput{Title: "X", DirectorID: "nobody"})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for director, got %v", err)
	}
	if n := count(t, f.store, domain.CollectionPlays, nil); n != 0 {
		t.Fatalf("expected no play written, found %d", n)
	}
	assertIDs(t, "actor plays", getDoc[domain.Actor](t, f.store, domain.CollectionActors, a.ID).Plays)
}

func TestPlayService_UpdateResyncsCast(t *testing.T) {
	f := newFixture(t)
	a1, a2, a3 := f.actor("Ann"), f.actor("Ben"), f.actor("Cid")
	p := f.play("Hamlet", "", a1.ID, a2.ID)

	cast := []string{a2.ID, a3.ID}
	updated, err := f.plays.Update(context.Background(), p.ID, ports.UpdatePlayInput{Actors: &cast})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	assertIDs(t, "play actors", updated.Actors, a2.ID, a3.ID)
	assertIDs(t, "removed actor", getDoc[domain.Actor](t, f.store, domain.CollectionActors, a1.ID).Plays)
	assertIDs(t, "kept actor", getDoc[domain.Actor](t, f.store, domain.CollectionActors, a2.ID).Plays, p.ID)
	assertIDs(t, "added actor", getDoc[domain.Actor](t, f.store, domain.CollectionActors, a3.ID).Plays, p.ID)

	empty := []string{}
	cleared, err := f.plays.Update(context.Background(), p.ID, ports.UpdatePlayInput{Actors: &empty})
	if err != nil {
		t.Fatalf("clear cast: %v", err)
	}
	if cleared.Actors == nil || len(cleared.Actors) != 0 {
		t.Fatalf("expected empty non-nil actors, got %#v", cleared.Actors)
	}
}

func TestPlayService_UpdateOmittedFieldsUntouched(t *testing.T) {
	f := newFixture(t)
	d := f.director("Dee")
	a := f.actor("Ann")
	p := f.play("Hamlet", d.ID, a.ID)

	title := "Hamlet, Prince of Denmark"
	got, err := f.plays.Update(context.Background(), p.ID, ports.UpdatePlayInput{Title: &title})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Title != title || got.DirectorID != d.ID || len(got.Actors) != 1 {
		t.Fatalf("unexpected play after update: %+v", got)
	}
}

func TestDirectorService_ReassignsPlay(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	d1, d2 := f.director("First"), f.director("Second")
	p := f.play("Hamlet", d1.ID)

	plays := []string{p.ID}
	if _, err := f.directors.Update(ctx, d2.ID, ports.UpdateDirectorInput{Plays: &plays}); err != nil {
		t.Fatalf("update director: %v", err)
	}

	if got := getDoc[domain.Play](t, f.store, domain.CollectionPlays, p.ID).DirectorID; got != d2.ID {
		t.Fatalf("play director = %q, want %q", got, d2.ID)
	}
	assertIDs(t, "old director plays", getDoc[domain.Director](t, f.store, domain.CollectionDirectors, d1.ID).Plays)
	assertIDs(t, "new director plays", getDoc[domain.Director](t, f.store, domain.CollectionDirectors, d2.ID).Plays, p.ID)

	none := []string{}
	if _, err := f.directors.Update(ctx, d2.ID, ports.UpdateDirectorInput{Plays: &none}); err != nil {
		t.Fatalf("clear director plays: %v", err)
	}
	if got := getDoc[domain.Play](t, f.store, domain.CollectionPlays, p.ID).DirectorID; got != "" {
		t.Fatalf("expected director cleared, got %q", got)
	}
}

func TestPlayService_ChangeDirector(t *testing.T) {
	f := newFixture(t)
	d1, d2 := f.director("First"), f.director("Second")
	p := f.play("Hamlet", d1.ID)

	next := d2.ID
	if _, err := f.plays.Update(context.Background(), p.ID, ports.UpdatePlayInput{DirectorID: &next}); err != nil {
		t.Fatalf("update: %v", err)
	}
	assertIDs(t, "old director", getDoc[domain.Director](t, f.store, domain.CollectionDirectors, d1.ID).Plays)
	assertIDs(t, "new director", getDoc[domain.Director](t, f.store, domain.CollectionDirectors, d2.ID).Plays, p.ID)
}

func TestActorService_EditPlaysMirrorsCast(t *testing.T) {
	f := newFixture(t)
	p1, p2 := f.play("Hamlet", ""), f.play("Macbeth", "")

	a, err := f.actors.Create(context.Background(), ports.CreateActorInput{Name: "Ann", Plays: []string{p1.ID}})
	if err != nil {
		t.Fatalf("create actor: %v", err)
	}
	assertIDs(t, "p1 cast", getDoc[domain.Play](t, f.store, domain.CollectionPlays, p1.ID).Actors, a.ID)

	plays := []string{p2.ID}
	if _, err := f.actors.Update(context.Background(), a.ID, ports.UpdateActorInput{Plays: &plays}); err != nil {
		t.Fatalf("update actor: %v", err)
	}
	assertIDs(t, "p1 cast", getDoc[domain.Play](t, f.store, domain.CollectionPlays, p1.ID).Actors)
	assertIDs(t, "p2 cast", getDoc[domain.Play](t, f.store, domain.CollectionPlays, p2.ID).Actors, a.ID)
}

func TestActorAndDirectorDelete_DetachFromPlays(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	d := f.director("Dee")
	a1, a2 := f.actor("Ann"), f.actor("Ben")
	p := f.play("Hamlet", d.ID, a1.ID, a2.ID)

	if err := f.actors.Delete(ctx, a1.ID); err != nil {
		t.Fatalf("delete actor: %v", err)
	}
	if err := f.directors.Delete(ctx, d.ID); err != nil {
		t.Fatalf("delete director: %v", err)
	}

	got := getDoc[domain.Play](t, f.store, domain.CollectionPlays, p.ID)
	assertIDs(t, "play actors", got.Actors, a2.ID)
	if got.DirectorID != "" {
		t.Fatalf("expected director cleared, got %q", got.DirectorID)
	}
	if err := f.actors.Delete(ctx, a1.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestPlayService_SyncFailureIsReported(t *testing.T) {
	f := newFixtureWithStore(t, &failingStore{
		DocumentStore: memory.New(),
		failAddToSet:  domain.CollectionActors,
		err:           errors.New("write timeout"),
	})
	a := f.actor("Ann")

	p, err := f.plays.Create(context.Background(), ports.CreatePlayInput{Title: "Hamlet", Actors: []string{a.ID}})
	if !errors.Is(err, domain.ErrPartialFailure) {
		t.Fatalf("expected ErrPartialFailure, got %v", err)
	}
	if p == nil || p.ID == "" {
		t.Fatalf("expected the committed play alongside the error")
	}
	if n := count(t, f.store, domain.CollectionPlays, ports.ByID(p.ID)); n != 1 {
		t.Fatalf("expected play persisted")
	}
}

func TestPlayService_Search(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	d := f.director("Dee")
	a := f.actor("Ann")
	f.play("The Tempest", d.ID, a.ID)
	f.play("Tempest Redux", "")
	f.play("Macbeth", d.ID)

	got, err := f.plays.Search(ctx, ports.PlaySearch{Title: "tempest"})
	if err != nil || len(got) != 2 {
		t.Fatalf("title search: %v %v", got, err)
	}
	got, err = f.plays.Search(ctx, ports.PlaySearch{DirectorID: d.ID, ActorID: a.ID})
	if err != nil || len(got) != 1 || got[0].Title != "The Tempest" {
		t.Fatalf("reference search: %v %v", got, err)
	}
	lo, hi := 100, 130
	got, err = f.plays.Search(ctx, ports.PlaySearch{MinDuration: &lo, MaxDuration: &hi, Page: ports.Page{Limit: 2}})
	if err != nil || len(got) != 2 {
		t.Fatalf("duration search with limit: %v %v", got, err)
	}
}
