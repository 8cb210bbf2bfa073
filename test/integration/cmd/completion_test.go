package cmd_test

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Cmd Completion Test", func() {
	Context("Bash completion", func() {
		It("generates the v2 script with descriptions", func() {
			out, err := run("", "completion", "bash")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("bash completion V2 for vmdemo"))
			Expect(out).To(ContainSubstring("__start_vmdemo"))
		})
	})

	Context("Unknown shell", func() {
		It("is rejected", func() {
			_, err := run("", "completion", "tcsh")
			Expect(err).To(HaveOccurred())
		})
	})
})
