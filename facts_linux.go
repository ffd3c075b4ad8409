//go:build linux

package confines

import (
	"bufio"
	"os"
	"strings"

	"golang.org/x/sys/unix"
)

const osReleasePath = "/etc/os-release"

// platformFacts collects Linux-specific facts: kernel release and version
// via uname, and distribution identity from /etc/os-release. Collection is
// best-effort; unreadable sources simply produce no facts.
func platformFacts() map[string]any {
	facts := make(map[string]any)

	var uname unix.Utsname
	if err := unix.Uname(&uname); err == nil {
		facts["kernelrelease"] = unix.ByteSliceToString(uname.Release[:])
		facts["kernelversion"] = unix.ByteSliceToString(uname.Version[:])
	}

	for k, v := range readOSRelease(osReleasePath) {
		facts[k] = v
	}

	return facts
}

// readOSRelease parses the os-release file (KEY=value lines, values
// possibly quoted) and maps the distribution identity to facts:
// ID -> "os.name", VERSION_ID -> "os.release".
func readOSRelease(path string) map[string]any {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	facts := make(map[string]any)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip comments and empty lines.
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := parts[0]
		value := strings.Trim(parts[1], `"'`)

		switch key {
		case "ID":
			facts["os.name"] = value
		case "VERSION_ID":
			facts["os.release"] = value
			// Other keys are ignored.
		}
	}
	if err := scanner.Err(); err != nil {
		return facts
	}
	return facts
}
