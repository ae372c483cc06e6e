// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"net/url"
	"regexp"
)

// Base URLs for structure downloads. Declared as vars so tests can
// substitute httptest servers.
var (
	pubchemBase   = "https://pubchem.ncbi.nlm.nih.gov/rest/pug/compound"
	alphafoldBase = "https://alphafold.ebi.ac.uk/files/"
)

// cidPattern matches a PubChem CID: a positive integer with no leading
// zeros, or "0".
var cidPattern = regexp.MustCompile(`^(?:[1-9]\d*|0)$`)

// IsCID reports whether the ligand identifier is a PubChem CID rather
// than a compound name.
func IsCID(id string) bool {
	return cidPattern.MatchString(id)
}

// LigandURL returns the PubChem PUG REST URL for the ligand's 3-D SDF
// record. CIDs resolve through the cid namespace, anything else through
// the name namespace.
func LigandURL(id string) string {
	namespace := "name"
	if IsCID(id) {
		namespace = "cid"
	}
	return pubchemBase + "/" + namespace + "/" + url.PathEscape(id) + "/record/SDF?record_type=3d"
}

// ReceptorURL returns the AlphaFold model URL for a UniProt accession.
func ReceptorURL(uniprotID string) string {
	return alphafoldBase + "AF-" + url.PathEscape(uniprotID) + "-F1-model_v4.pdb"
}
