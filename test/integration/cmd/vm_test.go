package cmd_test

import (
	"errors"
	"net"
	"os"
	"path/filepath"

	"github.com/cnrancher/vmdemo/pkg/types"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

func writePool(dir string) (string, string) {
	ips := filepath.Join(dir, "vm-ips.txt")
	pws := filepath.Join(dir, "vm-pws.txt")
	Expect(os.WriteFile(ips, []byte("127.0.0.1\n10.0.0.2\n"), 0600)).To(Succeed())
	Expect(os.WriteFile(pws, []byte("pw1\npw2\n"), 0600)).To(Succeed())
	return ips, pws
}

func closedPort() string {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	Expect(err).NotTo(HaveOccurred())
	_, port, err := net.SplitHostPort(ln.Addr().String())
	Expect(err).NotTo(HaveOccurred())
	Expect(ln.Close()).To(Succeed())
	return port
}

var _ = Describe("Cmd VM Test", func() {
	var dir, ips, pws string

	BeforeEach(func() {
		var err error
		dir, err = os.MkdirTemp("", "vmdemo-pool")
		Expect(err).NotTo(HaveOccurred())
		ips, pws = writePool(dir)
	})

	AfterEach(func() {
		_ = os.RemoveAll(dir)
	})

	Context("List the VM pool", func() {
		It("never prints a password", func() {
			out, err := run("", "list", "--ips-file", ips, "--passwords-file", pws)
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("127.0.0.1"))
			Expect(out).To(ContainSubstring("10.0.0.2"))
			Expect(out).To(ContainSubstring("******"))
			Expect(out).NotTo(ContainSubstring("pw1"))
			Expect(out).NotTo(ContainSubstring("pw2"))
		})
	})

	Context("List the targets", func() {
		It("merges the targets file over the defaults", func() {
			file := filepath.Join(dir, "targets.yaml")
			Expect(os.WriteFile(file, []byte("targets:\n  client:\n    path: client/client.go\n"), 0600)).To(Succeed())

			out, err := run("", "targets", "--targets-file", file)
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("client/client.go"))
			Expect(out).To(ContainSubstring("server/server.go"))
			Expect(out).To(ContainSubstring("127.0.0.1:12345"))
		})
	})

	Context("Interactive mode", func() {
		It("rejects an out of range vm before connecting", func() {
			_, err := run("", "interactive", "--vm", "11", "--ips-file", ips, "--passwords-file", pws)
			var cfgErr *types.ConfigurationError
			Expect(errors.As(err, &cfgErr)).To(BeTrue())
			Expect(errors.Is(err, types.ErrInvalidVM)).To(BeTrue())
		})

		It("rejects a non-numeric vm typed at the prompt", func() {
			out, err := run("abc\n", "interactive", "--vm=", "--ips-file", ips, "--passwords-file", pws)
			Expect(out).To(ContainSubstring("Which VM would you like to connect to?"))
			Expect(errors.Is(err, types.ErrInvalidVM)).To(BeTrue())
		})

		It("rejects a vm without a credential entry", func() {
			_, err := run("", "interactive", "--vm", "5", "--ips-file", ips, "--passwords-file", pws)
			var cfgErr *types.ConfigurationError
			Expect(errors.As(err, &cfgErr)).To(BeTrue())
		})

		It("fails with a connection error and logs the attempt", func() {
			_, err := run("", "interactive", "--vm", "1", "--ips-file", ips, "--passwords-file", pws,
				"--ssh-port", closedPort(), "--conn-timeout", "1s")
			var connErr *types.ConnectionError
			Expect(errors.As(err, &connErr)).To(BeTrue())

			out, err := run("", "logs", "--vm", "1", "--follow=false")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("[ssh-dialer] connecting to 127.0.0.1"))
			Expect(out).NotTo(ContainSubstring("pw1"))
		})
	})

	Context("One-shot mode", func() {
		It("rejects an unknown file before reading credentials", func() {
			_, err := run("", "oneshot", "--vm", "1", "--file", "client",
				"--ips-file", filepath.Join(dir, "missing"), "--passwords-file", filepath.Join(dir, "missing"))
			Expect(errors.Is(err, types.ErrUnknownTarget)).To(BeTrue())
		})

		It("rejects an out of range vm", func() {
			_, err := run("", "oneshot", "--vm", "0", "--file", "main")
			Expect(errors.Is(err, types.ErrInvalidVM)).To(BeTrue())
		})
	})

	Context("Logs and history", func() {
		It("reports a missing log", func() {
			_, err := run("", "logs", "--vm", "9", "--follow=false")
			Expect(err).To(HaveOccurred())
		})

		It("validates the vm index", func() {
			_, err := run("", "logs", "--vm", "42")
			Expect(errors.Is(err, types.ErrInvalidVM)).To(BeTrue())
		})

		It("renders the history table", func() {
			out, err := run("", "history", "--vm", "0", "--limit", "5")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("ACTION"))
		})
	})
})
