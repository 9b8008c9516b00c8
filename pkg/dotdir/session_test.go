package dotdir_test

import (
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/quietmindco/engram/pkg/dotdir"
)

var _ = Describe("dotdir.Manager session", func() {
	var tmpDir string
	var m *dotdir.Manager

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "dotdir-test-*")
		Expect(err).NotTo(HaveOccurred())
		m = dotdir.NewManager()
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	Describe("LoadSessionState", func() {
		It("returns nil when no session file exists", func() {
			state, err := m.LoadSessionState(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(state).To(BeNil())
		})

		It("loads a valid session state", func() {
			data := `{"conversation_id":"abc123","topic":"moving to madrid","messages":[{"role":"user","content":"hello"},{"role":"assistant","content":"hi there"}]}`
			err := os.WriteFile(filepath.Join(tmpDir, "session.json"), []byte(data), 0o600)
			Expect(err).NotTo(HaveOccurred())

			state, err := m.LoadSessionState(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(state).NotTo(BeNil())
			Expect(state.ConversationID).To(Equal("abc123"))
			Expect(state.Topic).To(Equal("moving to madrid"))
			Expect(state.Messages).To(HaveLen(2))
			Expect(state.Messages[0].Role).To(Equal("user"))
			Expect(state.Messages[0].Content).To(Equal("hello"))
			Expect(state.Messages[1].Role).To(Equal("assistant"))
			Expect(state.Messages[1].Content).To(Equal("hi there"))
		})

		It("returns error for invalid JSON", func() {
			err := os.WriteFile(filepath.Join(tmpDir, "session.json"), []byte("not json"), 0o600)
			Expect(err).NotTo(HaveOccurred())

			state, err := m.LoadSessionState(tmpDir)
			Expect(err).To(HaveOccurred())
			Expect(state).To(BeNil())
		})
	})

	Describe("SaveSession", func() {
		It("round-trips a session state", func() {
			state := &dotdir.SessionState{
				ConversationID: "conv-1",
				Topic:          "learning go",
				StartedAt:      time.Now().UTC().Truncate(time.Second),
				Messages: []dotdir.SessionMessage{
					{Role: "user", Content: "teach me goroutines"},
				},
			}
			Expect(m.SaveSession(state, tmpDir)).To(Succeed())

			loaded, err := m.LoadSessionState(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.ConversationID).To(Equal("conv-1"))
			Expect(loaded.Topic).To(Equal("learning go"))
			Expect(loaded.Messages).To(HaveLen(1))
		})

		It("rejects nil state", func() {
			Expect(m.SaveSession(nil, tmpDir)).NotTo(Succeed())
		})

		It("overwrites an existing session", func() {
			first := &dotdir.SessionState{ConversationID: "one"}
			Expect(m.SaveSession(first, tmpDir)).To(Succeed())

			second := &dotdir.SessionState{ConversationID: "two"}
			Expect(m.SaveSession(second, tmpDir)).To(Succeed())

			loaded, err := m.LoadSessionState(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.ConversationID).To(Equal("two"))
		})
	})

	Describe("ClearSession", func() {
		It("removes an existing session file", func() {
			state := &dotdir.SessionState{ConversationID: "gone"}
			Expect(m.SaveSession(state, tmpDir)).To(Succeed())

			Expect(m.ClearSession(tmpDir)).To(Succeed())

			loaded, err := m.LoadSessionState(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded).To(BeNil())
		})

		It("is a no-op when no session exists", func() {
			Expect(m.ClearSession(tmpDir)).To(Succeed())
		})
	})
})
