package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/quietmindco/engram/pkg/challenge"
	"github.com/quietmindco/engram/pkg/storage"
)

var _ = Describe("overview routes", func() {
	It("serves the morning briefing", func() {
		server, driver := newTestServer()
		_, err := driver.CreateGoal(context.Background(), "ship the importer", nil)
		Expect(err).NotTo(HaveOccurred())

		resp, err := server.app.Test(jsonRequest(http.MethodGet, "/v1/briefing", nil))
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(fiber.StatusOK))

		var out struct {
			Date  string          `json:"date"`
			Goals []*storage.Goal `json:"goals"`
		}
		decodeBody(resp, &out)
		Expect(out.Date).To(ContainSubstring(time.Now().Format("January")))
		Expect(out.Goals).To(HaveLen(1))
	})

	It("reports streak figures over every recorded day", func() {
		server, driver := newTestServer()
		ctx := context.Background()
		today, err := time.Parse("2006-01-02", challenge.Today())
		Expect(err).NotTo(HaveOccurred())
		Expect(driver.MarkStreak(ctx, challenge.Today())).To(Succeed())
		Expect(driver.MarkStreak(ctx, today.AddDate(0, 0, -1).Format("2006-01-02"))).To(Succeed())

		resp, err := server.app.Test(jsonRequest(http.MethodGet, "/v1/streaks?limit=1", nil))
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(fiber.StatusOK))

		var out struct {
			Current int                    `json:"current_streak"`
			Longest int                    `json:"longest_streak"`
			Days    []*storage.DailyStreak `json:"days"`
		}
		decodeBody(resp, &out)
		Expect(out.Current).To(Equal(2))
		Expect(out.Longest).To(Equal(2))
		// limit trims only the day list, never the figures
		Expect(out.Days).To(HaveLen(1))
	})

	It("serves the stats overview", func() {
		server, driver := newTestServer()
		_, err := driver.CreateFact(context.Background(), "alice", "likes graphs")
		Expect(err).NotTo(HaveOccurred())

		resp, err := server.app.Test(jsonRequest(http.MethodGet, "/v1/stats?window=7", nil))
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(fiber.StatusOK))

		var out struct {
			WindowDays int `json:"window_days"`
			TotalFacts int `json:"total_facts"`
		}
		decodeBody(resp, &out)
		Expect(out.WindowDays).To(Equal(7))
		Expect(out.TotalFacts).To(Equal(1))
	})
})
