package pom

// Mode selects the coordinate set and deploy target.
type Mode int

const (
	Release Mode = iota
	Snapshot
)

// String returns the mode's directory name.
func (m Mode) String() string {
	if m == Snapshot {
		return "snapshot"
	}
	return "release"
}

// Modes lists both modes in generation order.
var Modes = []Mode{Snapshot, Release}

// Repository is a deploy target used by the generated script.
type Repository struct {
	ID      string
	URL     string
	Command string
}

// License is the license block of every descriptor.
type License struct {
	Name string
	URL  string
}

// Developer is the developer block of every descriptor.
type Developer struct {
	ID           string
	Name         string
	URL          string
	Organization string
}

// Default coordinates and deploy targets.
const (
	DefaultGroupID    = "com.github.dcarter.gdata-java-client"
	DefaultProjectURL = "http://code.google.com/p/gdata-java-client/"
	DefaultSCMURL     = "http://code.google.com/p/gdata-java-client/source/browse/"

	SnapshotSuffix = "-SNAPSHOT"
)

var (
	DefaultSnapshotRepository = Repository{
		ID:      "sonatype-nexus-snapshots",
		URL:     "http://oss.sonatype.org/content/repositories/snapshots",
		Command: "mvn -e deploy:deploy-file",
	}
	DefaultReleaseRepository = Repository{
		ID:      "sonatype-nexus-staging",
		URL:     "http://oss.sonatype.org/service/local/staging/deploy/maven2",
		Command: "mvn -e gpg:sign-and-deploy-file",
	}
)

// Config holds everything written into descriptors and scripts.
type Config struct {
	// OutputDir is the root under which snapshot/ and release/ trees are
	// written.
	OutputDir string

	GroupID    string
	ProjectURL string
	SCMURL     string
	License    License
	Developer  Developer

	// Collections is the group and artifact used for dependencies on the
	// Google Collections jars. The version comes from the jar name.
	CollectionsGroupID    string
	CollectionsArtifactID string

	Snapshot Repository
	Release  Repository
}

// DefaultConfig returns the built-in descriptor settings with output under
// "target".
func DefaultConfig() Config {
	return Config{
		OutputDir:  "target",
		GroupID:    DefaultGroupID,
		ProjectURL: DefaultProjectURL,
		SCMURL:     DefaultSCMURL,
		License: License{
			Name: "Apache 2",
			URL:  "http://www.apache.org/licenses/LICENSE-2.0.txt",
		},
		Developer: Developer{
			ID:           "gdata-team",
			Name:         "The Google GData Team",
			URL:          "http://code.google.com/p/gdata-java-client/people/list",
			Organization: "Google",
		},
		CollectionsGroupID:    "com.google.collections",
		CollectionsArtifactID: "google-collections",
		Snapshot:              DefaultSnapshotRepository,
		Release:               DefaultReleaseRepository,
	}
}

// Repository returns the deploy target for mode.
func (c Config) Repository(mode Mode) Repository {
	if mode == Snapshot {
		return c.Snapshot
	}
	return c.Release
}
