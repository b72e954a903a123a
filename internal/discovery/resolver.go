package discovery

import "neura/internal/manifest"

// resolveStatus classifies a freshly scanned episode before reconciliation
// against the previous snapshot. Precedence is fixed: a fingerprint failure
// outranks everything, an unstable file outranks a missing camera side, and
// only fully fingerprinted episodes come out NEW. Reconciliation later
// downgrades rows whose fingerprint matches the previous run.
func resolveStatus(fingerprintFailed, pending, existsFront, existsWrist bool) manifest.Status {
	switch {
	case fingerprintFailed:
		return manifest.StatusError
	case pending:
		return manifest.StatusPending
	case !existsFront || !existsWrist:
		return manifest.StatusMissingSide
	default:
		return manifest.StatusNew
	}
}

// reconcile compares a scanned row against the previous snapshot. Any row
// whose fingerprint matches the previous run's under the same algorithm
// downgrades to UNCHANGED, MISSING_SIDE included, so an episode with a
// permanently absent camera stops being actionable once its bytes settle.
// A NEW row with history and a differing fingerprint becomes CHANGED; a
// differing MISSING_SIDE keeps its classification. PENDING and ERROR rows
// carry no fingerprint and pass through untouched.
func reconcile(row manifest.Row, prev map[manifest.Key]manifest.Row) manifest.Row {
	if !row.HasKey() || row.Fingerprint == "" {
		return row
	}
	if row.Status != manifest.StatusNew && row.Status != manifest.StatusMissingSide {
		return row
	}
	before, known := prev[row.Key()]
	if !known {
		return row
	}
	if before.Fingerprint != "" &&
		before.Fingerprint == row.Fingerprint &&
		before.FingerprintAlgo == row.FingerprintAlgo {
		row.Status = manifest.StatusUnchanged
	} else if row.Status == manifest.StatusNew {
		row.Status = manifest.StatusChanged
	}
	return row
}
