// Package main seeds the database with demo users, books, reviews and comments.
//
// Usage:
//
//	go run ./cmd/seed
//	go run ./cmd/seed -legacy-user 'ada,ada@example.com,$2a$10$...'  # import a bcrypt account
//	go run ./cmd/seed -demo=false -- -data-path /srv/bookclub       # config flags after --
//
// Demo accounts log in with password "password-<username>". Running the tool
// twice is safe: existing accounts and titles are skipped.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/samber/do/v2"

	"github.com/listenupapp/bookclub-server/internal/auth"
	"github.com/listenupapp/bookclub-server/internal/di"
	"github.com/listenupapp/bookclub-server/internal/di/providers"
	"github.com/listenupapp/bookclub-server/internal/domain"
	domainerrors "github.com/listenupapp/bookclub-server/internal/errors"
	"github.com/listenupapp/bookclub-server/internal/id"
	"github.com/listenupapp/bookclub-server/internal/logger"
	"github.com/listenupapp/bookclub-server/internal/service"
)

var (
	demo       = flag.Bool("demo", true, "Create demo users, books, reviews and comments")
	legacyUser = flag.String("legacy-user", "", "Import an account as username,email,bcrypt-hash")
)

type demoBook struct {
	owner   string
	title   string
	author  string
	rating  string
	reviews []demoReview
}

type demoReview struct {
	author   string
	content  string
	comments []demoComment
}

type demoComment struct {
	author  string
	content string
}

var demoUsers = []string{"alice", "bob", "carol"}

var demoBooks = []demoBook{
	{
		owner: "alice", title: "Dune", author: "Frank Herbert", rating: "4.5",
		reviews: []demoReview{
			{author: "bob", content: "Dense but rewarding. The appendices are worth it.", comments: []demoComment{
				{author: "alice", content: "Agreed, the glossary saved me."},
				{author: "carol", content: "I skipped them and regretted it."},
			}},
		},
	},
	{
		owner: "alice", title: "The Left Hand of Darkness", author: "Ursula K. Le Guin", rating: "5",
		reviews: []demoReview{
			{author: "carol", content: "Still ahead of its time."},
		},
	},
	{
		owner: "bob", title: "Neuromancer", author: "William Gibson", rating: "4",
		reviews: []demoReview{
			{author: "alice", content: "The opening line alone earns a star.", comments: []demoComment{
				{author: "bob", content: "The sky above the port..."},
			}},
		},
	},
	{owner: "carol", title: "Piranesi", author: "Susanna Clarke", rating: "4.75"},
}

func main() {
	flag.Parse()

	injector := di.NewContainer(flag.Args())
	defer func() { _ = injector.Shutdown() }()

	log := do.MustInvoke[*logger.Logger](injector)
	ctx := context.Background()

	if *legacyUser != "" {
		storeHandle := do.MustInvoke[*providers.StoreHandle](injector)
		if err := importLegacyUser(ctx, storeHandle, *legacyUser); err != nil {
			fail(log, "Failed to import legacy user", err)
		}
		log.Info("Imported legacy user", "username", strings.SplitN(*legacyUser, ",", 2)[0])
	}

	if *demo {
		services := do.MustInvoke[*service.Services](injector)
		if err := seedDemo(ctx, services, log); err != nil {
			fail(log, "Failed to seed demo data", err)
		}
	}
}

func fail(log *logger.Logger, msg string, err error) {
	log.Error(msg, "error", err)
	os.Exit(1)
}

// importLegacyUser stores an account with its bcrypt hash unchanged.
// The hash is upgraded to argon2id on the first successful login.
func importLegacyUser(ctx context.Context, st *providers.StoreHandle, raw string) error {
	parts := strings.SplitN(raw, ",", 3)
	if len(parts) != 3 {
		return errors.New("expected username,email,bcrypt-hash")
	}
	username, email, hash := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), strings.TrimSpace(parts[2])
	if username == "" || email == "" {
		return errors.New("username and email are required")
	}
	if !auth.IsLegacyHash(hash) {
		return errors.New("hash is not a bcrypt hash")
	}

	userID, err := id.Generate(id.PrefixUser)
	if err != nil {
		return err
	}
	user := &domain.User{
		Entity:       domain.Entity{ID: userID},
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}
	user.InitTimestamps()

	return st.CreateUser(ctx, user)
}

func seedDemo(ctx context.Context, services *service.Services, log *logger.Logger) error {
	identities := make(map[string]domain.Identity, len(demoUsers))
	for _, name := range demoUsers {
		identity, err := demoIdentity(ctx, services, name)
		if err != nil {
			return fmt.Errorf("user %s: %w", name, err)
		}
		identities[name] = identity
	}
	defer func() {
		for _, identity := range identities {
			_ = services.Auth.Logout(ctx, identity)
		}
	}()

	for _, b := range demoBooks {
		book, err := services.Books.CreateBook(ctx, identities[b.owner], service.CreateBookRequest{
			Title:  b.title,
			Author: b.author,
			Rating: b.rating,
		})
		if errors.Is(err, domainerrors.ErrConflict) {
			log.Info("Skipping existing book", "title", b.title)
			continue
		}
		if err != nil {
			return fmt.Errorf("book %q: %w", b.title, err)
		}

		for _, r := range b.reviews {
			review, err := services.Reviews.AddReview(ctx, identities[r.author], book.ID, service.ReviewRequest{Content: r.content})
			if err != nil {
				return fmt.Errorf("review on %q: %w", b.title, err)
			}
			for _, c := range r.comments {
				if _, err := services.Comments.AddComment(ctx, identities[c.author], review.ID, service.CommentRequest{Content: c.content}); err != nil {
					return fmt.Errorf("comment on %q: %w", b.title, err)
				}
			}
		}
		log.Info("Seeded book", "title", book.Title, "reviews", len(b.reviews))
	}

	return nil
}

// demoIdentity registers name if needed and logs in to resolve its identity.
func demoIdentity(ctx context.Context, services *service.Services, name string) (domain.Identity, error) {
	email := name + "@example.com"
	password := "password-" + name

	_, err := services.Auth.Register(ctx, service.RegisterRequest{Username: name, Email: email, Password: password})
	if err != nil && !errors.Is(err, domainerrors.ErrConflict) {
		return domain.Identity{}, err
	}

	resp, err := services.Auth.Login(ctx, service.LoginRequest{Email: email, Password: password})
	if err != nil {
		return domain.Identity{}, err
	}
	return domain.Identity{UserID: resp.User.ID, Username: resp.User.Username, SessionID: resp.SessionID}, nil
}
