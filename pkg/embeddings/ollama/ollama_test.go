package ollama_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/quietmindco/engram/pkg/embeddings"
	"github.com/quietmindco/engram/pkg/embeddings/ollama"
)

var _ = Describe("Embedder", func() {
	Describe("Embed", func() {
		It("should return the first embedding from the response", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				Expect(r.URL.Path).To(Equal("/api/embed"))

				w.Header().Set("Content-Type", "application/json")
				json.NewEncoder(w).Encode(map[string]any{
					"embeddings": [][]float32{{0.1, 0.2, 0.3}},
				})
			}))
			defer server.Close()

			embedder, err := ollama.NewEmbedder(ollama.EmbedderConfig{BaseURL: server.URL})
			Expect(err).NotTo(HaveOccurred())
			defer embedder.Close()

			embedding, err := embedder.Embed(context.Background(), "drinks an espresso every morning")
			Expect(err).NotTo(HaveOccurred())
			Expect(embedding).To(Equal([]float32{0.1, 0.2, 0.3}))
		})

		It("should send the default model when none is configured", func() {
			var body struct {
				Model string `json:"model"`
				Input string `json:"input"`
			}

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				Expect(json.NewDecoder(r.Body).Decode(&body)).To(Succeed())

				w.Header().Set("Content-Type", "application/json")
				json.NewEncoder(w).Encode(map[string]any{
					"embeddings": [][]float32{{0.5}},
				})
			}))
			defer server.Close()

			embedder, err := ollama.NewEmbedder(ollama.EmbedderConfig{BaseURL: server.URL})
			Expect(err).NotTo(HaveOccurred())
			defer embedder.Close()

			_, err = embedder.Embed(context.Background(), "some text")
			Expect(err).NotTo(HaveOccurred())
			Expect(body.Model).To(Equal(ollama.DefaultEmbeddingModel))
			Expect(body.Input).To(Equal("some text"))
		})

		It("should wrap non-200 responses in ErrEmbedding", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "model not found", http.StatusNotFound)
			}))
			defer server.Close()

			embedder, err := ollama.NewEmbedder(ollama.EmbedderConfig{BaseURL: server.URL})
			Expect(err).NotTo(HaveOccurred())
			defer embedder.Close()

			_, err = embedder.Embed(context.Background(), "some text")
			Expect(err).To(MatchError(embeddings.ErrEmbedding))
			Expect(err.Error()).To(ContainSubstring("status 404"))
		})

		It("should return an error when the response carries no embeddings", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				json.NewEncoder(w).Encode(map[string]any{
					"embeddings": [][]float32{},
				})
			}))
			defer server.Close()

			embedder, err := ollama.NewEmbedder(ollama.EmbedderConfig{BaseURL: server.URL})
			Expect(err).NotTo(HaveOccurred())
			defer embedder.Close()

			_, err = embedder.Embed(context.Background(), "some text")
			Expect(err).To(MatchError(embeddings.ErrEmbedding))
			Expect(err.Error()).To(ContainSubstring("no embeddings returned"))
		})
	})
})
