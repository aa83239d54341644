package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeStatus(t *testing.T) {
	assert.Equal(t, ArtifactStatusCompleted, NormalizeStatus("Ready"))
	assert.Equal(t, ArtifactStatusCompleted, NormalizeStatus("  completed "))
	assert.Equal(t, ArtifactStatusCompleted, NormalizeStatus("DONE"))
	assert.Equal(t, ArtifactStatusFailed, NormalizeStatus("error"))
	assert.Equal(t, ArtifactStatusFailed, NormalizeStatus("Failed"))
	assert.Equal(t, ArtifactStatusGeneratingAudio, NormalizeStatus("generating-audio"))
	assert.Equal(t, ArtifactStatusGeneratingAudio, NormalizeStatus("generating_audio"))
	assert.Equal(t, ArtifactStatusPending, NormalizeStatus("queued"))
	assert.Equal(t, "uploaded", NormalizeStatus("Uploaded"))
}

func TestMaterialStatusTerminal(t *testing.T) {
	assert.True(t, MaterialStatusTerminal(MaterialStatusCompleted))
	assert.True(t, MaterialStatusTerminal(MaterialStatusFailed))
	assert.True(t, MaterialStatusTerminal(MaterialStatusUnsupported))
	assert.False(t, MaterialStatusTerminal(MaterialStatusUploaded))
	assert.False(t, MaterialStatusTerminal(MaterialStatusPending))
	assert.False(t, MaterialStatusTerminal(MaterialStatusProcessing))
}

func TestArtifactStatusTerminal(t *testing.T) {
	assert.True(t, ArtifactStatusTerminal(ArtifactStatusCompleted))
	assert.True(t, ArtifactStatusTerminal(ArtifactStatusFailed))
	assert.False(t, ArtifactStatusTerminal(ArtifactStatusPending))
	assert.False(t, ArtifactStatusTerminal(ArtifactStatusProcessing))
	assert.False(t, ArtifactStatusTerminal(ArtifactStatusGeneratingAudio))
}
