package main

import (
	"bytes"
	"os"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	os.Exit(m.Run())
}

// TestExecute runs the built CLI's help output in a subprocess, the way
// the teacher's suite exercised rootCmd.Execute() end to end.
func TestExecute(t *testing.T) {
	if os.Getenv("FLOWLATTICE_HELP_SUBPROCESS") == "1" {
		main()
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=TestExecute")
	cmd.Env = append(os.Environ(), "FLOWLATTICE_HELP_SUBPROCESS=1")
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	cmd.Args = append(cmd.Args, "--help", "--no-banner")

	err := cmd.Run()
	require.NoError(t, err)

	assert.Contains(t, out.String(), "flowlattice")
	assert.Contains(t, out.String(), "analyze")
	assert.Contains(t, out.String(), "version")
}
