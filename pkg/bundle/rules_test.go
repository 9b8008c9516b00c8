package bundle_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/quietmindco/engram/pkg/bundle"
)

var _ = Describe("MatchCapture", func() {
	It("captures a remember-that fact under the default entity", func() {
		entity, text, ok := bundle.MatchCapture("remember that the wifi password changed last week")
		Expect(ok).To(BeTrue())
		Expect(entity).To(Equal("general"))
		Expect(text).To(Equal("the wifi password changed last week"))
	})

	It("derives the entity from an about clause", func() {
		entity, text, ok := bundle.MatchCapture("remember that we talked about kubernetes at standup")
		Expect(ok).To(BeTrue())
		Expect(entity).To(Equal("kubernetes"))
		Expect(text).To(Equal("we talked about kubernetes at standup"))
	})

	It("trims punctuation from a derived entity", func() {
		entity, _, ok := bundle.MatchCapture("note that I asked about Postgres, specifically indexes")
		Expect(ok).To(BeTrue())
		Expect(entity).To(Equal("postgres"))
	})

	It("captures note-that phrasing", func() {
		entity, text, ok := bundle.MatchCapture("Note that standup moved to 9:30")
		Expect(ok).To(BeTrue())
		Expect(entity).To(Equal("general"))
		Expect(text).To(Equal("standup moved to 9:30"))
	})

	It("matches case-insensitively but keeps the fact's casing", func() {
		_, text, ok := bundle.MatchCapture("REMEMBER THAT deploys freeze on Friday")
		Expect(ok).To(BeTrue())
		Expect(text).To(Equal("deploys freeze on Friday"))
	})

	It("captures the possessive form with the attribute as entity", func() {
		entity, text, ok := bundle.MatchCapture("My favorite color is deep green")
		Expect(ok).To(BeTrue())
		Expect(entity).To(Equal("favorite color"))
		Expect(text).To(Equal("favorite color is deep green"))
	})

	It("prefers the explicit remember phrasing over the possessive form", func() {
		entity, text, ok := bundle.MatchCapture("remember that my dentist is Dr. Kim")
		Expect(ok).To(BeTrue())
		Expect(entity).To(Equal("general"))
		Expect(text).To(Equal("my dentist is Dr. Kim"))
	})

	It("does not fire on ordinary messages", func() {
		_, _, ok := bundle.MatchCapture("how was your weekend")
		Expect(ok).To(BeFalse())
	})

	It("does not fire on an empty message", func() {
		_, _, ok := bundle.MatchCapture("")
		Expect(ok).To(BeFalse())
	})
})

var _ = Describe("CaptureRules", func() {
	It("is an ordered table with named rules", func() {
		Expect(bundle.CaptureRules).NotTo(BeEmpty())
		Expect(bundle.CaptureRules[0].Name).To(Equal("remember-that"))
		for _, r := range bundle.CaptureRules {
			Expect(r.Pattern).NotTo(BeNil())
			Expect(r.Extract).NotTo(BeNil())
		}
	})
})
