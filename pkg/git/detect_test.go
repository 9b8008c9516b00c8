package git_test

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/quietmindco/engram/pkg/git"
)

var _ = Describe("RepoName", func() {
	It("returns a non-empty name inside or outside a repo", func() {
		// Falls back to the working directory base name outside a repo.
		Expect(git.RepoName()).ToNot(BeEmpty())
	})
})

var _ = Describe("RemoteURL", func() {
	It("never returns a .git suffix", func() {
		url := git.RemoteURL()
		if url != "" {
			Expect(strings.HasSuffix(url, ".git")).To(BeFalse())
		}
	})
})
