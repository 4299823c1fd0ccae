// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Simple Quiz Contributors

//go:build integration

package integration

import (
	"context"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/simple-quiz-org/simple-quiz-api/internal/auth"
	"github.com/simple-quiz-org/simple-quiz-api/internal/room"
	"github.com/simple-quiz-org/simple-quiz-api/pkg/errutil"
)

var _ = Describe("Rooms", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	roomInput := func(name string, public bool) room.Input {
		return room.Input{Name: name, IsPublic: public}
	}

	It("round-trips a room through create and detail", func() {
		owner := newAnonymousIdentity(ctx)

		pw := "1234"
		created, err := env.Rooms.Create(ctx, owner, room.Input{
			Name:           "friday trivia",
			AccessPassword: &pw,
			IsPublic:       false,
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(room.ValidRoomID(created.ID)).To(BeTrue())

		got, err := env.Rooms.Detail(ctx, owner, created.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Name).To(Equal("friday trivia"))
		Expect(got.AccessPassword).To(HaveValue(Equal("1234")))
	})

	It("enforces read visibility", func() {
		owner := newAnonymousIdentity(ctx)
		stranger := newAnonymousIdentity(ctx)

		private, err := env.Rooms.Create(ctx, owner, roomInput("private room", false))
		Expect(err).NotTo(HaveOccurred())
		public, err := env.Rooms.Create(ctx, owner, roomInput("public room", true))
		Expect(err).NotTo(HaveOccurred())

		_, err = env.Rooms.Detail(ctx, stranger, private.ID)
		Expect(errutil.Code(err)).To(Equal(room.CodeForbidden))

		_, err = env.Rooms.Detail(ctx, stranger, public.ID)
		Expect(err).NotTo(HaveOccurred())
	})

	It("lets only the owner update, regardless of visibility", func() {
		owner := newAnonymousIdentity(ctx)
		stranger := newAnonymousIdentity(ctx)

		created, err := env.Rooms.Create(ctx, owner, roomInput("public room", true))
		Expect(err).NotTo(HaveOccurred())

		_, err = env.Rooms.Update(ctx, stranger, created.ID, roomInput("hijacked", true))
		Expect(errutil.Code(err)).To(Equal(room.CodeForbidden))

		updated, err := env.Rooms.Update(ctx, owner, created.ID, roomInput("renamed room", true))
		Expect(err).NotTo(HaveOccurred())
		Expect(updated.Name).To(Equal("renamed room"))
	})

	It("does not migrate ownership when the session binds to a user", func() {
		userID, mail := uniqueUser()
		sess, err := env.Auth.NewSession(ctx)
		Expect(err).NotTo(HaveOccurred())

		anon, err := env.Resolver.Resolve(ctx, sess.Token)
		Expect(err).NotTo(HaveOccurred())

		created, err := env.Rooms.Create(ctx, anon, roomInput("made before binding", false))
		Expect(err).NotTo(HaveOccurred())

		By("binding the session via signup confirmation")
		Expect(env.Signup.Start(ctx, signupInput(userID, mail))).To(Succeed())
		_, err = env.Signup.Confirm(ctx, env.notifier.tokenFor(mail), sess.Token)
		Expect(err).NotTo(HaveOccurred())

		bound, err := env.Resolver.Resolve(ctx, sess.Token)
		Expect(err).NotTo(HaveOccurred())
		Expect(bound.Kind).To(Equal(auth.Registered))

		By("the registered identity no longer matches the session-owned room")
		_, err = env.Rooms.Update(ctx, bound, created.ID, roomInput("still mine?", false))
		Expect(errutil.Code(err)).To(Equal(room.CodeForbidden))
	})

	It("keeps user-owned rooms across sessions", func() {
		userID, mail := uniqueUser()
		owner := registerUser(ctx, userID, mail)

		created, err := env.Rooms.Create(ctx, owner, roomInput("user room", false))
		Expect(err).NotTo(HaveOccurred())

		By("signing in on a brand new session")
		fresh, err := env.Auth.NewSession(ctx)
		Expect(err).NotTo(HaveOccurred())
		_, err = env.Auth.SignIn(ctx, userID, "password123", fresh.Token)
		Expect(err).NotTo(HaveOccurred())

		rebound, err := env.Resolver.Resolve(ctx, fresh.Token)
		Expect(err).NotTo(HaveOccurred())

		_, err = env.Rooms.Update(ctx, rebound, created.ID, roomInput("renamed room", false))
		Expect(err).NotTo(HaveOccurred())
	})

	It("lists own and public rooms, newest update first", func() {
		owner := newAnonymousIdentity(ctx)

		private, err := env.Rooms.Create(ctx, owner, roomInput("own private", false))
		Expect(err).NotTo(HaveOccurred())
		public, err := env.Rooms.Create(ctx, owner, roomInput("own public", true))
		Expect(err).NotTo(HaveOccurred())

		rooms, err := env.Rooms.List(ctx, owner, 0, 0)
		Expect(err).NotTo(HaveOccurred())

		ids := make([]string, 0, len(rooms))
		for _, r := range rooms {
			ids = append(ids, r.ID)
		}
		Expect(ids).To(ContainElements(private.ID, public.ID))

		By("a stranger sees the public room but not the private one")
		stranger := newAnonymousIdentity(ctx)
		rooms, err = env.Rooms.List(ctx, stranger, 0, 0)
		Expect(err).NotTo(HaveOccurred())

		ids = ids[:0]
		for _, r := range rooms {
			ids = append(ids, r.ID)
		}
		Expect(ids).To(ContainElement(public.ID))
		Expect(ids).NotTo(ContainElement(private.ID))
	})

	It("refuses creation without a live session", func() {
		_, err := env.Rooms.Create(ctx, auth.Identity{Kind: auth.Unauthenticated}, roomInput("no session", true))
		Expect(errutil.Code(err)).To(Equal(auth.CodeInvalidSession))
	})
})
