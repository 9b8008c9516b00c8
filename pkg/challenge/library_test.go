package challenge_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/quietmindco/engram/pkg/challenge"
	"github.com/quietmindco/engram/pkg/storage"
)

var _ = Describe("challenge library", func() {
	Describe("Library", func() {
		It("returns the full curated catalog", func() {
			all := challenge.Library()
			Expect(all).NotTo(BeEmpty())

			categories := map[string]bool{}
			for _, s := range all {
				Expect(s.Title).NotTo(BeEmpty())
				Expect(s.Description).NotTo(BeEmpty())
				Expect(s.Difficulty).To(BeElementOf(
					storage.DifficultyBeginner,
					storage.DifficultyIntermediate,
					storage.DifficultyAdvanced,
				))
				categories[s.Category] = true
			}
			Expect(categories).To(HaveKey("python"))
			Expect(categories).To(HaveKey("data_analysis"))
			Expect(categories).To(HaveKey("machine_learning"))
			Expect(categories).To(HaveKey("digitalization"))
		})
	})

	Describe("SuggestionsFor", func() {
		It("returns a category's suggestions", func() {
			python := challenge.SuggestionsFor("python", "")
			Expect(python).NotTo(BeEmpty())
			for _, s := range python {
				Expect(s.Category).To(Equal("python"))
			}
		})

		It("matches categories case-insensitively and across separators", func() {
			upper := challenge.SuggestionsFor("Machine_Learning", "")
			hyphen := challenge.SuggestionsFor("machine-learning", "")
			spaced := challenge.SuggestionsFor("machine learning", "")

			Expect(upper).NotTo(BeEmpty())
			Expect(hyphen).To(Equal(upper))
			Expect(spaced).To(Equal(upper))
		})

		It("narrows to one difficulty", func() {
			beginner := challenge.SuggestionsFor("python", storage.DifficultyBeginner)
			Expect(beginner).NotTo(BeEmpty())
			for _, s := range beginner {
				Expect(s.Difficulty).To(Equal(storage.DifficultyBeginner))
			}

			all := challenge.SuggestionsFor("python", "")
			Expect(len(beginner)).To(BeNumerically("<", len(all)))
		})

		It("returns nothing for an unknown category", func() {
			Expect(challenge.SuggestionsFor("underwater_basket_weaving", "")).To(BeEmpty())
		})
	})

	Describe("SearchSuggestions", func() {
		It("matches titles case-insensitively", func() {
			results := challenge.SearchSuggestions("TODO")
			Expect(results).To(HaveLen(1))
			Expect(results[0].Title).To(Equal("CLI Todo App"))
		})

		It("matches the taught-skill list", func() {
			results := challenge.SearchSuggestions("pandas")
			Expect(results).NotTo(BeEmpty())
			for _, s := range results {
				Expect(s.Category).NotTo(BeEmpty())
			}
		})

		It("matches descriptions across categories", func() {
			results := challenge.SearchSuggestions("dashboard")
			categories := map[string]bool{}
			for _, s := range results {
				categories[s.Category] = true
			}
			Expect(categories).To(HaveKey("digitalization"))
		})

		It("returns nothing for a blank keyword", func() {
			Expect(challenge.SearchSuggestions("  ")).To(BeEmpty())
		})
	})
})
