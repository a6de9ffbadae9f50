// Package zone defines the record type shared by the zone table encoder and
// the pipeline: a canonical IANA zone name paired with its compiled zoneinfo bytes.
package zone
