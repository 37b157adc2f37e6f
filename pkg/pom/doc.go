// Package pom writes Maven descriptors and a deploy script for the jars of
// one gdata distribution.
//
// [Generator.Generate] takes a dependency mapping (see package depgraph) and
// produces, under <output>/<snapshot|release>/v<version>:
//
//	gdata-core-1.0-pom.xml
//	jsr305-pom.xml
//	...
//	mvn_deploy_gdata_<version>
//
// Each descriptor carries the configured group, the artifact identifier as
// artifactId and name, the distribution version (with -SNAPSHOT in
// [Snapshot] mode), fixed project metadata, and a dependencies block for
// artifacts that have dependencies. The deploy script runs one
// deploy-file invocation per descriptor against the mode's repository.
//
// The output directory is deleted and recreated on every call, so the tree
// always reflects exactly the mapping it was generated from.
package pom
