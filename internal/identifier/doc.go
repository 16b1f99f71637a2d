// Package identifier derives the canonical names that tie a slide's label to
// its image artifact and its cleanup whitelist entry.
//
// Every name is a pure function of (label, year, slide ordinal), so repeated
// runs over the same corpus produce identical filenames.
package identifier
