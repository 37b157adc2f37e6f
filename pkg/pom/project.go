package pom

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"regexp"

	"github.com/matzehuels/gdatamvn/pkg/depgraph"
)

const (
	pomNamespace      = "http://maven.apache.org/POM/4.0.0"
	xsiNamespace      = "http://www.w3.org/2001/XMLSchema-instance"
	pomSchemaLocation = "http://maven.apache.org/POM/4.0.0 http://maven.apache.org/maven-v4_0_0.xsd"
	modelVersion      = "4.0.0"
)

var collectionsPattern = regexp.MustCompile(`google-collect-(\S+)`)

type project struct {
	XMLName        xml.Name `xml:"project"`
	Xmlns          string   `xml:"xmlns,attr"`
	Xsi            string   `xml:"xmlns:xsi,attr"`
	SchemaLocation string   `xml:"xsi:schemaLocation,attr"`

	ModelVersion string        `xml:"modelVersion"`
	GroupID      string        `xml:"groupId"`
	ArtifactID   string        `xml:"artifactId"`
	Version      string        `xml:"version"`
	Name         string        `xml:"name"`
	Description  string        `xml:"description"`
	URL          string        `xml:"url"`
	Licenses     []license     `xml:"licenses>license"`
	SCM          scm           `xml:"scm"`
	Developers   []developer   `xml:"developers>developer"`
	Dependencies *dependencies `xml:"dependencies"`
}

type license struct {
	Name string `xml:"name"`
	URL  string `xml:"url"`
}

type scm struct {
	URL string `xml:"url"`
}

type developer struct {
	ID           string `xml:"id"`
	Name         string `xml:"name"`
	URL          string `xml:"url"`
	Organization string `xml:"organization"`
}

// dependencies is nil for terminal artifacts.
type dependencies struct {
	Dependency []dependency `xml:"dependency"`
}

type dependency struct {
	GroupID    string `xml:"groupId"`
	ArtifactID string `xml:"artifactId"`
	Version    string `xml:"version"`
}

// Dependency is a resolved Maven coordinate.
type Dependency struct {
	GroupID    string
	ArtifactID string
	Version    string
}

// Resolve maps a dependency identifier to Maven coordinates. Google
// Collections jars resolve to the upstream artifact with the version taken
// from the identifier; all others resolve into the configured group at
// pomVersion.
func (c Config) Resolve(id, pomVersion string) Dependency {
	if m := collectionsPattern.FindStringSubmatch(id); m != nil {
		return Dependency{GroupID: c.CollectionsGroupID, ArtifactID: c.CollectionsArtifactID, Version: m[1]}
	}
	return Dependency{GroupID: c.GroupID, ArtifactID: id, Version: pomVersion}
}

// Description is the description text of the descriptor for id.
func Description(id string) string {
	return fmt.Sprintf("3rd-party jar %s from gdata-java-client project repackaged to meet requirements of Maven central repo", id)
}

// Marshal renders the descriptor for id.
func (c Config) Marshal(id, pomVersion string, m depgraph.Mapping) ([]byte, error) {
	p := project{
		Xmlns:          pomNamespace,
		Xsi:            xsiNamespace,
		SchemaLocation: pomSchemaLocation,
		ModelVersion:   modelVersion,
		GroupID:        c.GroupID,
		ArtifactID:     id,
		Version:        pomVersion,
		Name:           id,
		Description:    Description(id),
		URL:            c.ProjectURL,
		Licenses:       []license{{Name: c.License.Name, URL: c.License.URL}},
		SCM:            scm{URL: c.SCMURL},
		Developers: []developer{{
			ID:           c.Developer.ID,
			Name:         c.Developer.Name,
			URL:          c.Developer.URL,
			Organization: c.Developer.Organization,
		}},
	}
	if deps := m.Deps(id); deps != nil {
		p.Dependencies = &dependencies{}
		for _, dep := range deps {
			p.Dependencies.Dependency = append(p.Dependencies.Dependency, dependency(c.Resolve(dep, pomVersion)))
		}
	}

	var buf bytes.Buffer
	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(p); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}
