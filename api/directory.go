/*
directory.go - In-process registry of pharmacy and worker context

PURPOSE:
  The allocation engine consumes pharmacy profile facts (chain/org flags,
  operating state, swap auto-publish) and worker facts (employment type,
  award level, classification) but does not own them. In production these
  come from the accounts service; here a small registry keeps them so the
  HTTP layer can hand them to the workflow services.

CONCURRENCY:
  Guarded by a RWMutex. Registrations replace whole records.

SEE ALSO:
  - handlers.go: Looks up context per request
  - shifts/types.go: PharmacyContext, PharmacyMembership
*/
package api

import (
	"sync"

	"github.com/locumbase/shift-engine/rates"
	"github.com/locumbase/shift-engine/shifts"
)

type membershipKey struct {
	UserID     shifts.UserID
	PharmacyID shifts.PharmacyID
}

// Directory holds pharmacy contexts and worker memberships/profiles.
type Directory struct {
	mu          sync.RWMutex
	pharmacies  map[shifts.PharmacyID]shifts.PharmacyContext
	memberships map[membershipKey]shifts.PharmacyMembership
	profiles    map[shifts.UserID]rates.WorkerProfile
}

// NewDirectory creates an empty directory.
func NewDirectory() *Directory {
	return &Directory{
		pharmacies:  make(map[shifts.PharmacyID]shifts.PharmacyContext),
		memberships: make(map[membershipKey]shifts.PharmacyMembership),
		profiles:    make(map[shifts.UserID]rates.WorkerProfile),
	}
}

// PutPharmacy registers or replaces a pharmacy context.
func (d *Directory) PutPharmacy(pc shifts.PharmacyContext) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pharmacies[pc.PharmacyID] = pc
}

// Pharmacy looks up a pharmacy context.
func (d *Directory) Pharmacy(id shifts.PharmacyID) (shifts.PharmacyContext, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	pc, ok := d.pharmacies[id]
	return pc, ok
}

// PutWorker registers or replaces a worker's membership and rate profile.
func (d *Directory) PutWorker(m shifts.PharmacyMembership, p rates.WorkerProfile) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.memberships[membershipKey{UserID: m.UserID, PharmacyID: m.PharmacyID}] = m
	d.profiles[m.UserID] = p
}

// Membership looks up a worker's membership at one pharmacy.
func (d *Directory) Membership(userID shifts.UserID, pharmacyID shifts.PharmacyID) (shifts.PharmacyMembership, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	m, ok := d.memberships[membershipKey{UserID: userID, PharmacyID: pharmacyID}]
	return m, ok
}

// Profile looks up a worker's rate profile. Missing profiles resolve with
// per-role defaults, so the zero value is returned when absent.
func (d *Directory) Profile(userID shifts.UserID) rates.WorkerProfile {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.profiles[userID]
}

// Reset clears all registrations (for testing/demo).
func (d *Directory) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pharmacies = make(map[shifts.PharmacyID]shifts.PharmacyContext)
	d.memberships = make(map[membershipKey]shifts.PharmacyMembership)
	d.profiles = make(map[shifts.UserID]rates.WorkerProfile)
}
