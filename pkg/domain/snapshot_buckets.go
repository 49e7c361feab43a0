package domain

import (
	"encoding/json"
	"fmt"
)

// Snapshot bucket names as stored by durable backends and archives.
const (
	BucketHospitals    = "hospitals"
	BucketDepartments  = "departments"
	BucketRooms        = "rooms"
	BucketPhysicians   = "physicians"
	BucketPatients     = "patients"
	BucketHistories    = "clinical_histories"
	BucketAppointments = "appointments"
	BucketLinks        = "links"
)

// SnapshotBuckets lists every bucket in write order.
func SnapshotBuckets() []string {
	return []string{
		BucketHospitals, BucketDepartments, BucketRooms, BucketPhysicians,
		BucketPatients, BucketHistories, BucketAppointments, BucketLinks,
	}
}

func (s *Snapshot) bucketTargets() map[string]any {
	return map[string]any{
		BucketHospitals:    &s.Hospitals,
		BucketDepartments:  &s.Departments,
		BucketRooms:        &s.Rooms,
		BucketPhysicians:   &s.Physicians,
		BucketPatients:     &s.Patients,
		BucketHistories:    &s.Histories,
		BucketAppointments: &s.Appointments,
		BucketLinks:        &s.Links,
	}
}

// EncodeBuckets marshals each bucket of s to JSON.
func (s Snapshot) EncodeBuckets() (map[string][]byte, error) {
	targets := s.bucketTargets()
	out := make(map[string][]byte, len(targets))
	for _, bucket := range SnapshotBuckets() {
		data, err := json.Marshal(targets[bucket])
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", bucket, err)
		}
		out[bucket] = data
	}
	return out, nil
}

// DecodeBuckets rebuilds a Snapshot from JSON buckets. Unknown buckets and
// empty payloads are skipped.
func DecodeBuckets(buckets map[string][]byte) (Snapshot, error) {
	var s Snapshot
	targets := s.bucketTargets()
	for bucket, payload := range buckets {
		target, ok := targets[bucket]
		if !ok || len(payload) == 0 {
			continue
		}
		if err := json.Unmarshal(payload, target); err != nil {
			return Snapshot{}, fmt.Errorf("decode %s: %w", bucket, err)
		}
	}
	return s, nil
}
