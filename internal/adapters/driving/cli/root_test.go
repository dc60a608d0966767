package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRootCmd_Use(t *testing.T) {
	assert.Equal(t, "papertrail", rootCmd.Use)
}

func TestRootCmd_HasPipelineCommands(t *testing.T) {
	commands := rootCmd.Commands()
	names := make([]string, 0, len(commands))
	for _, cmd := range commands {
		names = append(names, cmd.Name())
	}

	assert.Contains(t, names, "ingest")
	assert.Contains(t, names, "extract")
	assert.Contains(t, names, "build-index")
	assert.Contains(t, names, "validate")
	assert.Contains(t, names, "search")
	assert.Contains(t, names, "sources")
	assert.Contains(t, names, "status")
	assert.Contains(t, names, "version")
}

func TestSearchCmd_RequiresQuery(t *testing.T) {
	err := searchCmd.Args(searchCmd, []string{})
	assert.Error(t, err)
}

func TestIngestCmd_Flags(t *testing.T) {
	assert.NotNil(t, ingestCmd.Flags().Lookup("source"))
	assert.NotNil(t, ingestCmd.Flags().Lookup("max-downloads"))
	assert.NotNil(t, ingestCmd.Flags().Lookup("time-budget"))
}
