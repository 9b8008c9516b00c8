package mcp_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/quietmindco/engram/api/mcp"
	"github.com/quietmindco/engram/pkg/briefing"
	"github.com/quietmindco/engram/pkg/challenge"
	"github.com/quietmindco/engram/pkg/learning"
	"github.com/quietmindco/engram/pkg/memory/hybrid"
	"github.com/quietmindco/engram/pkg/storage/sqlite"
)

var _ = Describe("MCP Server", func() {
	var (
		server *mcp.Server
		config mcp.Config
	)

	BeforeEach(func() {
		driver, err := sqlite.NewSQLiteDriver(":memory:")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(driver.Close)

		logger := zap.NewNop()
		config = mcp.Config{
			Storer:     driver,
			Memory:     hybrid.NewEngine(driver, nil, nil, logger),
			Learning:   learning.NewService(driver),
			Challenges: challenge.NewService(driver),
			Briefing:   briefing.NewService(driver, nil),
			Logger:     logger,
		}

		server, err = mcp.NewServer(config)
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("NewServer", func() {
		It("returns an error when storage driver is nil", func() {
			broken := config
			broken.Storer = nil
			_, err := mcp.NewServer(broken)
			Expect(err).To(MatchError(ContainSubstring("storage driver is required")))
		})

		It("returns an error when memory driver is nil", func() {
			broken := config
			broken.Memory = nil
			_, err := mcp.NewServer(broken)
			Expect(err).To(MatchError(ContainSubstring("memory driver is required")))
		})

		It("returns an error when learning service is nil", func() {
			broken := config
			broken.Learning = nil
			_, err := mcp.NewServer(broken)
			Expect(err).To(MatchError(ContainSubstring("learning service is required")))
		})

		It("returns an error when challenge service is nil", func() {
			broken := config
			broken.Challenges = nil
			_, err := mcp.NewServer(broken)
			Expect(err).To(MatchError(ContainSubstring("challenge service is required")))
		})

		It("returns an error when briefing service is nil", func() {
			broken := config
			broken.Briefing = nil
			_, err := mcp.NewServer(broken)
			Expect(err).To(MatchError(ContainSubstring("briefing service is required")))
		})

		It("returns an error when logger is nil", func() {
			broken := config
			broken.Logger = nil
			_, err := mcp.NewServer(broken)
			Expect(err).To(MatchError(ContainSubstring("logger is required")))
		})

		It("creates a server with valid config", func() {
			Expect(server).NotTo(BeNil())
		})

		It("returns an HTTP handler", func() {
			handler := server.Handler()
			Expect(handler).NotTo(BeNil())
		})

		It("builds a noop server without dependencies", func() {
			noop, err := mcp.NewServer(mcp.Config{Noop: true})
			Expect(err).NotTo(HaveOccurred())
			Expect(noop).NotTo(BeNil())
			Expect(noop.Handler()).To(BeNil())
		})
	})
})
