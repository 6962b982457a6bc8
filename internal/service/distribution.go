// internal/service/distribution.go
package service

import (
	"log"

	"github.com/unclebandit/zapleopard-backend/internal/model"
	"github.com/unclebandit/zapleopard-backend/internal/repository"
)

// historyLookupLimit caps how many interaction rows feed the affinity pass.
const historyLookupLimit = 500

// Assignment maps each sender id to the recipients assigned to it for one
// orchestration run. Discarded once recipients are persisted.
type Assignment struct {
	BySender map[int][]model.Recipient
	Counts   map[int]int

	// ordered keeps input order so recipients persist oldest-first in the
	// same order contacts arrived.
	ordered []model.Recipient
}

func newAssignment(senders []model.Sender) *Assignment {
	a := &Assignment{
		BySender: make(map[int][]model.Recipient),
		Counts:   make(map[int]int),
	}
	for _, s := range senders {
		a.BySender[s.ID] = []model.Recipient{}
		a.Counts[s.ID] = 0
	}
	return a
}

func (a *Assignment) add(senderID int, rcpt model.Recipient) {
	rcpt.SenderID = senderID
	a.BySender[senderID] = append(a.BySender[senderID], rcpt)
	a.Counts[senderID]++
	a.ordered = append(a.ordered, rcpt)
}

// RoundRobinIndex picks the sender slot for the i-th recipient (0-indexed).
func RoundRobinIndex(i, senderCount int) int {
	return i % senderCount
}

// DistributionEngine assigns each contact to exactly one sender and persists
// one pendente recipient per contact. Re-running it for a campaign is
// idempotent: existing contact+campaign rows are not duplicated.
type DistributionEngine struct {
	SenderRepo    repository.SenderRepositoryInterface
	RecipientRepo repository.RecipientRepositoryInterface
}

// Distribute assigns contacts to senders. When recent interaction history is
// available, a contact stays with the sender it already exchanged messages
// with; contacts without history fill the least-loaded senders. If the
// history lookup fails, distribution falls back to pure round-robin.
func (d *DistributionEngine) Distribute(campaign *model.Campaign, contacts []model.Contact, senders []model.Sender) (*Assignment, error) {
	assignment := newAssignment(senders)

	affinity := d.loadAffinity(campaign.OrganizationID, senders)
	if len(affinity) == 0 {
		for i, contact := range contacts {
			sender := senders[RoundRobinIndex(i, len(senders))]
			assignment.add(sender.ID, recipientFor(campaign.ID, contact))
		}
	} else {
		unmatched := []model.Contact{}
		for _, contact := range contacts {
			if senderID, ok := affinity[contact.Phone]; ok {
				assignment.add(senderID, recipientFor(campaign.ID, contact))
			} else {
				unmatched = append(unmatched, contact)
			}
		}
		for _, contact := range unmatched {
			assignment.add(leastLoaded(assignment, senders), recipientFor(campaign.ID, contact))
		}
	}

	// Persist pendente rows with their resolved sender.
	for i := range assignment.ordered {
		rcpt := &assignment.ordered[i]
		created, err := d.RecipientRepo.CreateIfAbsent(rcpt)
		if err != nil {
			return nil, err
		}
		if !created {
			log.Println("⚠️ recipient already exists for campaign", campaign.ID, "phone", rcpt.Phone)
		}
	}

	return assignment, nil
}

// loadAffinity maps contact phones to the sender they most recently talked
// to. Only senders in the active pool count. An empty map means no usable
// history and triggers the round-robin fallback.
func (d *DistributionEngine) loadAffinity(organizationID int, senders []model.Sender) map[string]int {
	interactions, err := d.SenderRepo.RecentInteractions(organizationID, historyLookupLimit)
	if err != nil {
		log.Println("⚠️ history lookup failed, falling back to round-robin:", err)
		return nil
	}

	pool := make(map[int]bool, len(senders))
	for _, s := range senders {
		pool[s.ID] = true
	}

	// Rows come newest first, so the first hit per phone wins.
	affinity := make(map[string]int)
	for _, in := range interactions {
		if !pool[in.SenderID] {
			continue
		}
		if _, seen := affinity[in.Phone]; !seen {
			affinity[in.Phone] = in.SenderID
		}
	}
	return affinity
}

// leastLoaded returns the sender with the fewest assignments so far, ties
// broken by pool order, equalizing the remaining load.
func leastLoaded(a *Assignment, senders []model.Sender) int {
	best := senders[0].ID
	for _, s := range senders[1:] {
		if a.Counts[s.ID] < a.Counts[best] {
			best = s.ID
		}
	}
	return best
}

func recipientFor(campaignID int, contact model.Contact) model.Recipient {
	return model.Recipient{
		CampaignID: campaignID,
		Name:       contact.Name,
		Phone:      contact.Phone,
		Status:     model.RecipientPendente,
	}
}
