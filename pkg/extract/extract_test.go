package extract_test

import (
	"context"
	"errors"
	"fmt"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/quietmindco/engram/pkg/completion"
	"github.com/quietmindco/engram/pkg/extract"
)

func staticCall(response string) completion.CallFunc {
	return func(ctx context.Context, system, prompt string) (string, error) {
		return response, nil
	}
}

func failingCall(err error) completion.CallFunc {
	return func(ctx context.Context, system, prompt string) (string, error) {
		return "", err
	}
}

var _ = Describe("Extractor", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	Describe("Extract", func() {
		It("should parse facts and goals from a JSON response", func() {
			response := `{"facts":[{"entity":"coffee","text":"drinks oat milk lattes"}],"goals":["ship the importer by friday"]}`

			extraction, err := extract.NewExtractor(staticCall(response)).Extract(ctx, "i always order oat milk", "noted")
			Expect(err).NotTo(HaveOccurred())
			Expect(extraction.Facts).To(Equal([]extract.Fact{{Entity: "coffee", Text: "drinks oat milk lattes"}}))
			Expect(extraction.Goals).To(Equal([]string{"ship the importer by friday"}))
		})

		It("should strip markdown fences around the JSON", func() {
			response := "```json\n{\"facts\":[{\"entity\":\"vim\",\"text\":\"prefers vim keybindings\"}],\"goals\":[]}\n```"

			extraction, err := extract.NewExtractor(staticCall(response)).Extract(ctx, "u", "a")
			Expect(err).NotTo(HaveOccurred())
			Expect(extraction.Facts).To(HaveLen(1))
			Expect(extraction.Facts[0].Entity).To(Equal("vim"))
		})

		It("should lowercase entities and default empty ones", func() {
			response := `{"facts":[{"entity":"Trail Running","text":"runs trails on sundays"},{"entity":"","text":"allergic to peanuts"}],"goals":[]}`

			extraction, err := extract.NewExtractor(staticCall(response)).Extract(ctx, "u", "a")
			Expect(err).NotTo(HaveOccurred())
			Expect(extraction.Facts[0].Entity).To(Equal("trail running"))
			Expect(extraction.Facts[1].Entity).To(Equal("general"))
		})

		It("should drop blank facts and goals", func() {
			response := `{"facts":[{"entity":"x","text":"  "}],"goals":["   ",""]}`

			extraction, err := extract.NewExtractor(staticCall(response)).Extract(ctx, "u", "a")
			Expect(err).NotTo(HaveOccurred())
			Expect(extraction.Empty()).To(BeTrue())
		})

		It("should cap facts and goals per turn", func() {
			var facts []string
			for i := 0; i < 12; i++ {
				facts = append(facts, fmt.Sprintf(`{"entity":"e%d","text":"fact %d"}`, i, i))
			}
			response := `{"facts":[` + strings.Join(facts, ",") + `],"goals":["a","b","c","d","e"]}`

			extraction, err := extract.NewExtractor(staticCall(response)).Extract(ctx, "u", "a")
			Expect(err).NotTo(HaveOccurred())
			Expect(extraction.Facts).To(HaveLen(10))
			Expect(extraction.Goals).To(HaveLen(3))
		})

		It("should send both halves of the turn with the JSON contract", func() {
			var gotSystem, gotPrompt string
			call := func(ctx context.Context, system, prompt string) (string, error) {
				gotSystem = system
				gotPrompt = prompt
				return `{"facts":[],"goals":[]}`, nil
			}

			_, err := extract.NewExtractor(call).Extract(ctx, "i switched to neovim last month", "good choice")
			Expect(err).NotTo(HaveOccurred())
			Expect(gotPrompt).To(ContainSubstring("[user] i switched to neovim last month"))
			Expect(gotPrompt).To(ContainSubstring("[assistant] good choice"))
			Expect(gotPrompt).To(ContainSubstring("Return ONLY valid JSON"))
			Expect(gotSystem).To(ContainSubstring("durable"))
		})

		It("should truncate oversized turns", func() {
			var gotPrompt string
			call := func(ctx context.Context, system, prompt string) (string, error) {
				gotPrompt = prompt
				return `{"facts":[],"goals":[]}`, nil
			}

			long := strings.Repeat("a", 13000) + "TAIL"
			_, err := extract.NewExtractor(call).Extract(ctx, long, "ok")
			Expect(err).NotTo(HaveOccurred())
			Expect(gotPrompt).NotTo(ContainSubstring("TAIL"))
		})

		It("should report a parse failure for a non-JSON response", func() {
			_, err := extract.NewExtractor(staticCall("sure, noted!")).Extract(ctx, "u", "a")
			Expect(err).To(MatchError(ContainSubstring("parse response")))
		})

		It("should wrap a failed completion call", func() {
			_, err := extract.NewExtractor(failingCall(errors.New("connection refused"))).Extract(ctx, "u", "a")
			Expect(err).To(MatchError(ContainSubstring("completion call")))
		})

		It("should refuse to run without a backend", func() {
			_, err := extract.NewExtractor(nil).Extract(ctx, "u", "a")
			Expect(err).To(MatchError(ContainSubstring("no completion backend")))
		})
	})

	Describe("Capture", func() {
		It("should prefer the completion result over the trigger rules", func() {
			response := `{"facts":[{"entity":"tooling","text":"switched to neovim"}],"goals":[]}`

			extraction := extract.NewExtractor(staticCall(response)).Capture(ctx, "my editor is neovim", "nice")
			Expect(extraction.Facts).To(Equal([]extract.Fact{{Entity: "tooling", Text: "switched to neovim"}}))
		})

		It("should fall back to the trigger rules when the call fails", func() {
			ex := extract.NewExtractor(failingCall(errors.New("connection refused")))

			extraction := ex.Capture(ctx, "remember that the demo is on thursday", "will do")
			Expect(extraction.Facts).To(Equal([]extract.Fact{{Entity: "general", Text: "the demo is on thursday"}}))
		})

		It("should fall back when the response is not JSON", func() {
			ex := extract.NewExtractor(staticCall("got it, remembering that"))

			extraction := ex.Capture(ctx, "note that standups moved to 9am", "ok")
			Expect(extraction.Facts).To(HaveLen(1))
			Expect(extraction.Facts[0].Text).To(Equal("standups moved to 9am"))
		})

		It("should use only the trigger rules without a backend", func() {
			extraction := extract.NewExtractor(nil).Capture(ctx, "my editor is neovim", "nice")
			Expect(extraction.Facts).To(Equal([]extract.Fact{{Entity: "editor", Text: "editor is neovim"}}))
		})

		It("should capture nothing when no rule fires", func() {
			extraction := extract.NewExtractor(nil).Capture(ctx, "what's the weather like", "no idea")
			Expect(extraction.Empty()).To(BeTrue())
		})
	})
})
