// Package artifactstore manages the flat output directory of extracted image
// artifacts. Names are plain file names; paths outside the directory are
// rejected.
package artifactstore
