// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Simple Quiz Contributors

//go:build integration

package integration

import (
	"context"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/simple-quiz-org/simple-quiz-api/internal/auth"
	"github.com/simple-quiz-org/simple-quiz-api/pkg/errutil"
)

var _ = Describe("Signup flow", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	It("walks the full two-phase flow", func() {
		userID, mail := uniqueUser()
		sess, err := env.Auth.NewSession(ctx)
		Expect(err).NotTo(HaveOccurred())

		By("staging the signup")
		Expect(env.Signup.Start(ctx, signupInput(userID, mail))).To(Succeed())
		token := env.notifier.tokenFor(mail)
		Expect(token).To(HaveLen(32))

		By("pre-filling the register form from the token")
		gotMail, err := env.Signup.LookupMail(ctx, token)
		Expect(err).NotTo(HaveOccurred())
		Expect(gotMail).To(Equal(mail))

		By("confirming and binding the session")
		boundID, err := env.Signup.Confirm(ctx, token, sess.Token)
		Expect(err).NotTo(HaveOccurred())
		Expect(boundID).To(Equal(userID))

		info, err := env.Auth.SessionInfo(ctx, sess.Token)
		Expect(err).NotTo(HaveOccurred())
		Expect(info.Bound()).To(BeTrue())
		Expect(*info.UserID).To(Equal(userID))

		By("signing in on a fresh session with the same credentials")
		fresh, err := env.Auth.NewSession(ctx)
		Expect(err).NotTo(HaveOccurred())
		user, err := env.Auth.SignIn(ctx, userID, "password123", fresh.Token)
		Expect(err).NotTo(HaveOccurred())
		Expect(user.ID).To(Equal(userID))

		By("signing in by mail as well")
		another, err := env.Auth.NewSession(ctx)
		Expect(err).NotTo(HaveOccurred())
		_, err = env.Auth.SignIn(ctx, mail, "password123", another.Token)
		Expect(err).NotTo(HaveOccurred())
	})

	It("throttles immediate resubmission but allows it after the cool-down", func() {
		userID, mail := uniqueUser()

		Expect(env.Signup.Start(ctx, signupInput(userID, mail))).To(Succeed())
		firstToken := env.notifier.tokenFor(mail)

		err := env.Signup.Start(ctx, signupInput(userID, mail))
		Expect(errutil.Code(err)).To(Equal(auth.CodeThrottled))

		coolDownSignup(ctx, mail)

		Expect(env.Signup.Start(ctx, signupInput(userID, mail))).To(Succeed())
		Expect(env.notifier.tokenFor(mail)).NotTo(Equal(firstToken), "resubmission rotates the token")
	})

	It("rejects a confirmation token outside the one-hour window", func() {
		userID, mail := uniqueUser()
		sess, err := env.Auth.NewSession(ctx)
		Expect(err).NotTo(HaveOccurred())

		Expect(env.Signup.Start(ctx, signupInput(userID, mail))).To(Succeed())
		token := env.notifier.tokenFor(mail)

		expireSignup(ctx, mail)

		_, err = env.Signup.Confirm(ctx, token, sess.Token)
		Expect(errutil.Code(err)).To(Equal(auth.CodeInvalidConfirmToken))
	})

	It("makes confirmation tokens single-use", func() {
		userID, mail := uniqueUser()
		sess, err := env.Auth.NewSession(ctx)
		Expect(err).NotTo(HaveOccurred())

		Expect(env.Signup.Start(ctx, signupInput(userID, mail))).To(Succeed())
		token := env.notifier.tokenFor(mail)

		_, err = env.Signup.Confirm(ctx, token, sess.Token)
		Expect(err).NotTo(HaveOccurred())

		replay, err := env.Auth.NewSession(ctx)
		Expect(err).NotTo(HaveOccurred())
		_, err = env.Signup.Confirm(ctx, token, replay.Token)
		Expect(errutil.Code(err)).To(Equal(auth.CodeInvalidConfirmToken))
	})

	It("refuses ids and mails that are already claimed", func() {
		userID, mail := uniqueUser()
		registerUser(ctx, userID, mail)

		otherID, otherMail := uniqueUser()

		err := env.Signup.Start(ctx, signupInput(userID, otherMail))
		Expect(errutil.Code(err)).To(Equal(auth.CodeDuplicate))

		err = env.Signup.Start(ctx, signupInput(otherID, mail))
		Expect(errutil.Code(err)).To(Equal(auth.CodeDuplicate))
	})

	It("reserves a staged user id before confirmation", func() {
		userID, mail := uniqueUser()
		Expect(env.Signup.Start(ctx, signupInput(userID, mail))).To(Succeed())

		ok, err := env.Auth.CanIUse(ctx, userID)
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeFalse(), "a pending signup claims the id")

		freeID, _ := uniqueUser()
		ok, err = env.Auth.CanIUse(ctx, freeID)
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
	})

	It("reports wrong password and unknown user identically", func() {
		userID, mail := uniqueUser()
		registerUser(ctx, userID, mail)

		sess, err := env.Auth.NewSession(ctx)
		Expect(err).NotTo(HaveOccurred())

		_, wrongPw := env.Auth.SignIn(ctx, userID, "wrong-password", sess.Token)
		_, unknown := env.Auth.SignIn(ctx, "nobody99", "wrong-password", sess.Token)

		Expect(errutil.Code(wrongPw)).To(Equal(auth.CodeInvalidCredentials))
		Expect(errutil.Code(unknown)).To(Equal(auth.CodeInvalidCredentials))
		Expect(wrongPw.Error()).To(Equal(unknown.Error()))
	})

	It("discards a session on sign-out", func() {
		sess, err := env.Auth.NewSession(ctx)
		Expect(err).NotTo(HaveOccurred())

		Expect(env.Auth.SignOut(ctx, sess.Token)).To(Succeed())

		_, err = env.Auth.SessionInfo(ctx, sess.Token)
		Expect(errutil.Code(err)).To(Equal(auth.CodeInvalidSession))

		Expect(env.Auth.SignOut(ctx, sess.Token)).To(Succeed(), "sign-out is idempotent")
	})
})
