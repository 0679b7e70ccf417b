package trh

import (
	"fmt"
	"strings"

	"github.com/carbocation/vcfgo"
)

// VCFType identifies the TR-calling tool whose VCF dialect a stream uses.
type VCFType string

const (
	TypeAuto    VCFType = "auto"
	TypeGangSTR VCFType = "gangstr"
	TypeHipSTR  VCFType = "hipstr"
	TypeAdVNTR  VCFType = "advntr"
	TypeEH      VCFType = "eh"
	TypePopSTR  VCFType = "popstr"
)

// signature lists the header IDs that identify a dialect. All infos and
// formats must be declared; absentInfos must not be (they disambiguate
// dialects whose markers would otherwise be a subset of another's).
type signature struct {
	infos       []string
	formats     []string
	absentInfos []string
}

var signatures = map[VCFType]signature{
	TypeGangSTR: {
		infos:       []string{"RU"},
		formats:     []string{"REPCN"},
		absentInfos: []string{"VID", "VARID"},
	},
	TypeHipSTR: {
		infos: []string{"START", "END", "PERIOD"},
	},
	TypeAdVNTR: {
		infos: []string{"RU", "VID"},
	},
	TypeEH: {
		infos: []string{"VARID", "REPID"},
	},
	TypePopSTR: {
		infos: []string{"Motif", "RefLen"},
	},
}

// inferOrder fixes the priority in which dialect signatures are tested.
var inferOrder = []VCFType{TypeHipSTR, TypeAdVNTR, TypeEH, TypePopSTR, TypeGangSTR}

// VCFTypeNames lists the concrete dialect names, for error messages and
// flag usage strings.
func VCFTypeNames() string {
	b := strings.Builder{}
	for i, m := range inferOrder {
		if i != 0 {
			b.WriteString(", ")
		}
		b.WriteString(string(m))
	}

	return b.String()
}

// ParseVCFType converts a user-supplied type name into a VCFType.
func ParseVCFType(s string) (VCFType, error) {
	t := VCFType(strings.ToLower(s))
	if t == TypeAuto {
		return t, nil
	}
	if _, ok := signatures[t]; !ok {
		return "", fmt.Errorf("unknown VCF type %q; valid types: auto, %s", s, VCFTypeNames())
	}

	return t, nil
}

// missingMarkers returns the signature header IDs a header lacks, or the
// required-absent IDs it wrongly declares (prefixed with "!").
func missingMarkers(h *vcfgo.Header, sig signature) []string {
	var missing []string
	for _, id := range sig.infos {
		if _, ok := h.Infos[id]; !ok {
			missing = append(missing, "INFO/"+id)
		}
	}
	for _, id := range sig.formats {
		if _, ok := h.SampleFormats[id]; !ok {
			missing = append(missing, "FORMAT/"+id)
		}
	}
	for _, id := range sig.absentInfos {
		if _, ok := h.Infos[id]; ok {
			missing = append(missing, "!INFO/"+id)
		}
	}

	return missing
}

// InferVCFType resolves a stream's dialect from its header, once per stream.
// A concrete requested type is validated against the header and returned
// unchanged; TypeAuto tests every known signature and requires exactly one
// match. Malformed records inside a correctly typed stream are a
// harmonization-time concern, not handled here.
func InferVCFType(h *vcfgo.Header, requested VCFType) (VCFType, error) {
	if requested != TypeAuto {
		sig, ok := signatures[requested]
		if !ok {
			return "", fmt.Errorf("unknown VCF type %q; valid types: auto, %s", requested, VCFTypeNames())
		}
		if missing := missingMarkers(h, sig); len(missing) > 0 {
			return "", TypeDetectionError{Requested: requested, Missing: missing}
		}

		return requested, nil
	}

	var matches []VCFType
	for _, t := range inferOrder {
		if len(missingMarkers(h, signatures[t])) == 0 {
			matches = append(matches, t)
		}
	}
	if len(matches) != 1 {
		return "", TypeDetectionError{Requested: TypeAuto, Matches: matches}
	}

	return matches[0], nil
}
