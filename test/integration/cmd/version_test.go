package cmd_test

import (
	"encoding/json"
	"strings"

	"github.com/cnrancher/vmdemo/pkg/types"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Cmd Version Test", func() {
	Context("Long version is correct", func() {
		It("return the correct version info", func() {
			out, err := run("", "version", "--short=false")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(HavePrefix("Version: "))

			version := &types.VersionInfo{}
			err = json.Unmarshal([]byte(strings.TrimSpace(out[len("Version: "):])), version)
			Expect(err).NotTo(HaveOccurred())
			Expect(version.GoVersion).NotTo(BeEmpty())
			Expect(version.Platform).NotTo(BeEmpty())
		})
	})

	Context("Short version is correct", func() {
		It("return the correct version info", func() {
			out, err := run("", "version", "-s")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(Equal("Version: dev\n"))
		})
	})
})
