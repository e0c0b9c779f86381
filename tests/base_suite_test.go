package tests

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const defaultAudioFixture = "data/lecture_sample.m4a"

// ExternalDependenciesSuite loads credentials from SETTINGS_FILE (or
// $HOME/.env) before the suite runs.
type ExternalDependenciesSuite struct {
	suite.Suite
	settingsFile string
}

func (s *ExternalDependenciesSuite) SetupSuite() {
	settingsFromEnv := strings.TrimSpace(os.Getenv("SETTINGS_FILE"))
	settingsFile := settingsFromEnv
	if settingsFile == "" {
		homeDir, err := os.UserHomeDir()
		require.NoError(s.T(), err)
		settingsFile = filepath.Join(homeDir, ".env")
	}

	s.settingsFile = settingsFile

	_, err := os.Stat(settingsFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && settingsFromEnv == "" {
			return
		}
		require.NoError(s.T(), err)
		return
	}

	err = godotenv.Overload(settingsFile)
	require.NoError(s.T(), err)
}

func (s *ExternalDependenciesSuite) SettingsFile() string {
	return s.settingsFile
}

// AudioFixture returns AURALEX_TEST_AUDIO or the bundled sample, skipping
// the test when neither is readable.
func (s *ExternalDependenciesSuite) AudioFixture() string {
	path := strings.TrimSpace(os.Getenv("AURALEX_TEST_AUDIO"))
	if path == "" {
		path = defaultAudioFixture
	}
	if _, err := os.Stat(path); err != nil {
		s.T().Skipf("%s is not accessible (%v); skipping audio integration test", path, err)
	}
	return path
}
