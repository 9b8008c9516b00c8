package completion_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/quietmindco/engram/pkg/completion"
	"github.com/quietmindco/engram/pkg/llm"
)

var _ = Describe("Streaming", func() {
	var (
		ctx        context.Context
		transcript []llm.Message
		deltas     []string
		onDelta    func(string)
	)

	BeforeEach(func() {
		ctx = context.Background()
		transcript = []llm.Message{llm.NewTextMessage("user", "hello there")}
		deltas = nil
		onDelta = func(text string) { deltas = append(deltas, text) }
	})

	Context("with anthropic", func() {
		It("should hand out deltas and assemble the full response", func() {
			stream := "event: message_start\n" +
				"data: {\"type\":\"message_start\",\"message\":{\"model\":\"claude-haiku-4-5-20251001\",\"usage\":{\"input_tokens\":12}}}\n\n" +
				"event: content_block_delta\n" +
				"data: {\"type\":\"content_block_delta\",\"delta\":{\"type\":\"text_delta\",\"text\":\"Hel\"}}\n\n" +
				"event: content_block_delta\n" +
				"data: {\"type\":\"content_block_delta\",\"delta\":{\"type\":\"text_delta\",\"text\":\"lo\"}}\n\n" +
				"event: message_delta\n" +
				"data: {\"type\":\"message_delta\",\"delta\":{\"stop_reason\":\"end_turn\"},\"usage\":{\"output_tokens\":5}}\n\n" +
				"event: message_stop\n" +
				"data: {\"type\":\"message_stop\"}\n\n"

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				w.Header().Set("Content-Type", "text/event-stream")
				fmt.Fprint(w, stream)
			}))
			defer server.Close()

			streamFn, err := completion.NewStreamer(completion.Config{
				Provider: completion.ProviderAnthropic,
				APIKey:   "sk-ant-test",
				BaseURL:  server.URL,
			})
			Expect(err).NotTo(HaveOccurred())

			resp, err := streamFn(ctx, "be brief", transcript, onDelta)
			Expect(err).NotTo(HaveOccurred())

			Expect(deltas).To(Equal([]string{"Hel", "lo"}))
			Expect(resp.Message.GetText()).To(Equal("Hello"))
			Expect(resp.Model).To(Equal("claude-haiku-4-5-20251001"))
			Expect(resp.StopReason).To(Equal("end_turn"))
			Expect(resp.Done).To(BeTrue())
			Expect(resp.Usage).NotTo(BeNil())
			Expect(resp.Usage.PromptTokens).To(Equal(12))
			Expect(resp.Usage.CompletionTokens).To(Equal(5))
			Expect(resp.Usage.TotalTokens).To(Equal(17))
		})

		It("should surface streamed error events as unavailable", func() {
			stream := "event: error\n" +
				"data: {\"type\":\"error\",\"error\":{\"message\":\"overloaded_error\"}}\n\n"

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				fmt.Fprint(w, stream)
			}))
			defer server.Close()

			streamFn, err := completion.NewStreamer(completion.Config{
				Provider: completion.ProviderAnthropic,
				APIKey:   "sk-ant-test",
				BaseURL:  server.URL,
			})
			Expect(err).NotTo(HaveOccurred())

			_, err = streamFn(ctx, "", transcript, onDelta)
			Expect(err).To(MatchError(completion.ErrUnavailable))
			Expect(err.Error()).To(ContainSubstring("overloaded_error"))
		})
	})

	Context("with openai", func() {
		It("should accumulate delta chunks until [DONE]", func() {
			stream := "data: {\"model\":\"gpt-4o-mini\",\"choices\":[{\"delta\":{\"content\":\"Hi \"},\"finish_reason\":\"\"}]}\n\n" +
				"data: {\"model\":\"gpt-4o-mini\",\"choices\":[{\"delta\":{\"content\":\"there\"},\"finish_reason\":\"\"}]}\n\n" +
				"data: {\"model\":\"gpt-4o-mini\",\"choices\":[{\"delta\":{},\"finish_reason\":\"stop\"}]}\n\n" +
				"data: [DONE]\n\n"

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				fmt.Fprint(w, stream)
			}))
			defer server.Close()

			streamFn, err := completion.NewStreamer(completion.Config{
				Provider: completion.ProviderOpenAI,
				APIKey:   "sk-test",
				BaseURL:  server.URL,
			})
			Expect(err).NotTo(HaveOccurred())

			resp, err := streamFn(ctx, "", transcript, onDelta)
			Expect(err).NotTo(HaveOccurred())

			Expect(deltas).To(Equal([]string{"Hi ", "there"}))
			Expect(resp.Message.GetText()).To(Equal("Hi there"))
			Expect(resp.StopReason).To(Equal("stop"))
		})
	})

	Context("with ollama", func() {
		It("should read NDJSON lines and keep the final counters", func() {
			stream := `{"model":"llama3.2","message":{"content":"Hey"},"done":false}` + "\n" +
				`{"model":"llama3.2","message":{"content":"!"},"done":false}` + "\n" +
				`{"model":"llama3.2","message":{"content":""},"done":true,"done_reason":"stop","prompt_eval_count":8,"eval_count":2,"total_duration":123456}` + "\n"

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				fmt.Fprint(w, stream)
			}))
			defer server.Close()

			streamFn, err := completion.NewStreamer(completion.Config{
				Provider: completion.ProviderOllama,
				BaseURL:  server.URL,
			})
			Expect(err).NotTo(HaveOccurred())

			resp, err := streamFn(ctx, "", transcript, onDelta)
			Expect(err).NotTo(HaveOccurred())

			Expect(deltas).To(Equal([]string{"Hey", "!"}))
			Expect(resp.Message.GetText()).To(Equal("Hey!"))
			Expect(resp.StopReason).To(Equal("stop"))
			Expect(resp.Usage).NotTo(BeNil())
			Expect(resp.Usage.PromptTokens).To(Equal(8))
			Expect(resp.Usage.CompletionTokens).To(Equal(2))
			Expect(resp.Usage.TotalDurationNs).To(Equal(int64(123456)))
		})
	})

	It("should tag failed stream starts as unavailable", func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			http.Error(w, "busy", http.StatusServiceUnavailable)
		}))
		defer server.Close()

		streamFn, err := completion.NewStreamer(completion.Config{
			Provider: completion.ProviderOllama,
			BaseURL:  server.URL,
		})
		Expect(err).NotTo(HaveOccurred())

		_, err = streamFn(ctx, "", transcript, onDelta)
		Expect(err).To(MatchError(completion.ErrUnavailable))
	})
})
