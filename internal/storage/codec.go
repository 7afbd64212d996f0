package storage

import (
	"encoding/json"
	"errors"

	"trackreward/internal/model"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

var ErrVersionMismatch = errors.New("record version mismatch")

// Stamp marks a record with the current schema and codec versions.
func Stamp() model.VersionedRecord {
	return model.VersionedRecord{SchemaVersion: CurrentSchemaVersion, CodecVersion: CurrentCodecVersion}
}

func EncodeEpisode(s model.EpisodeSummary) ([]byte, error) {
	return json.Marshal(s)
}

func DecodeEpisode(data []byte) (model.EpisodeSummary, error) {
	var summary model.EpisodeSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return model.EpisodeSummary{}, err
	}
	if err := checkVersion(summary.VersionedRecord); err != nil {
		return model.EpisodeSummary{}, err
	}
	return summary, nil
}

func EncodeStepTrace(records []model.StepRecord) ([]byte, error) {
	return json.Marshal(records)
}

func DecodeStepTrace(data []byte) ([]model.StepRecord, error) {
	var records []model.StepRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func checkVersion(v model.VersionedRecord) error {
	if v.SchemaVersion != CurrentSchemaVersion || v.CodecVersion != CurrentCodecVersion {
		return ErrVersionMismatch
	}
	return nil
}
