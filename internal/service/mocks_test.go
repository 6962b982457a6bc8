package service_test

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/unclebandit/zapleopard-backend/internal/model"
	"github.com/unclebandit/zapleopard-backend/internal/repository"
)

// --- In-memory campaign repository ---

type memCampaignRepo struct {
	mu        sync.Mutex
	campaigns map[int]*model.Campaign
	nextID    int
}

func newMemCampaignRepo() *memCampaignRepo {
	return &memCampaignRepo{campaigns: map[int]*model.Campaign{}, nextID: 1}
}

func (m *memCampaignRepo) Create(c *model.Campaign) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.ID = m.nextID
	m.nextID++
	c.CreatedAt = time.Now()
	if c.Status == "" {
		c.Status = model.CampaignDraft
	}
	clone := *c
	m.campaigns[c.ID] = &clone
	return nil
}

func (m *memCampaignRepo) GetByID(id int) (*model.Campaign, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.campaigns[id]
	if !ok {
		return nil, fmt.Errorf("campaign %d not found", id)
	}
	clone := *c
	return &clone, nil
}

func (m *memCampaignRepo) ListCampaigns(offset, limit int, status string) ([]*model.Campaign, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := []*model.Campaign{}
	for _, c := range m.campaigns {
		if status != "" && c.Status != status {
			continue
		}
		clone := *c
		all = append(all, &clone)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	total := len(all)
	if offset > total {
		return []*model.Campaign{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (m *memCampaignRepo) UpdateStatus(campaignID int, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.campaigns[campaignID]; ok {
		c.Status = status
	}
	return nil
}

func (m *memCampaignRepo) MarkFinished(campaignID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.campaigns[campaignID]; ok {
		c.Status = model.CampaignFinished
		now := time.Now()
		c.FinishedAt = &now
	}
	return nil
}

func (m *memCampaignRepo) UpdateCounters(campaignID, sent, responded int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.campaigns[campaignID]; ok {
		c.Sent = sent
		c.Responded = responded
	}
	return nil
}

func (m *memCampaignRepo) GetContentItems(campaignID int) ([]model.ContentItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.campaigns[campaignID]; ok {
		return c.ContentItems, nil
	}
	return nil, nil
}

// --- In-memory sender repository ---

type memSenderRepo struct {
	mu           sync.Mutex
	senders      []model.Sender
	interactions []model.Interaction
	historyErr   error
}

func (m *memSenderRepo) ListActive(organizationID int) ([]model.Sender, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Sender{}
	for _, s := range m.senders {
		if s.OrganizationID == organizationID && s.Active {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memSenderRepo) IncrementSent(senderID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.senders {
		if m.senders[i].ID == senderID {
			m.senders[i].MessagesSent++
		}
	}
	return nil
}

func (m *memSenderRepo) RecentInteractions(organizationID, limit int) ([]model.Interaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.historyErr != nil {
		return nil, m.historyErr
	}
	if len(m.interactions) > limit {
		return m.interactions[:limit], nil
	}
	return m.interactions, nil
}

func (m *memSenderRepo) sentCount(senderID int) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.senders {
		if s.ID == senderID {
			return s.MessagesSent
		}
	}
	return 0
}

// --- In-memory recipient repository ---

type memRecipientRepo struct {
	mu         sync.Mutex
	recipients map[int]*model.Recipient
	nextID     int
}

func newMemRecipientRepo() *memRecipientRepo {
	return &memRecipientRepo{recipients: map[int]*model.Recipient{}, nextID: 1}
}

func (m *memRecipientRepo) CreateIfAbsent(rcpt *model.Recipient) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.recipients {
		if existing.CampaignID == rcpt.CampaignID && existing.Phone == rcpt.Phone {
			rcpt.ID = existing.ID
			return false, nil
		}
	}
	rcpt.ID = m.nextID
	m.nextID++
	rcpt.Status = model.RecipientPendente
	rcpt.CreatedAt = time.Now()
	clone := *rcpt
	m.recipients[rcpt.ID] = &clone
	return true, nil
}

func (m *memRecipientRepo) GetByID(id int) (*model.Recipient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.recipients[id]
	if !ok {
		return nil, nil
	}
	clone := *r
	return &clone, nil
}

func (m *memRecipientRepo) ListPending(campaignID int) ([]model.Recipient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Recipient{}
	for _, r := range m.recipients {
		if r.CampaignID == campaignID && r.Status == model.RecipientPendente {
			out = append(out, *r)
		}
	}
	// Oldest created first; ids are assigned in creation order.
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memRecipientRepo) CountPending(campaignID int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, r := range m.recipients {
		if r.CampaignID == campaignID && r.Status == model.RecipientPendente {
			count++
		}
	}
	return count, nil
}

func (m *memRecipientRepo) HasAssignments(campaignID int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.recipients {
		if r.CampaignID == campaignID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memRecipientRepo) MarkEnviado(id int, renderedContent string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.recipients[id]
	if !ok || r.Status != model.RecipientPendente {
		return nil
	}
	r.Status = model.RecipientEnviado
	r.RenderedContent = renderedContent
	now := time.Now()
	r.SentAt = &now
	return nil
}

func (m *memRecipientRepo) MarkErro(id int, lastError string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.recipients[id]
	if !ok || r.Status != model.RecipientPendente {
		return nil
	}
	r.Status = model.RecipientErro
	r.LastError = lastError
	return nil
}

func (m *memRecipientRepo) MarkRespondido(id int, replyText string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.recipients[id]
	if !ok || r.Status != model.RecipientEnviado {
		return false, nil
	}
	r.Status = model.RecipientRespondido
	r.ReplyText = replyText
	now := time.Now()
	r.RespondedAt = &now
	return true, nil
}

func (m *memRecipientRepo) UpdateReplyInsights(id int, summary, sentiment string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.recipients[id]; ok {
		r.ReplySummary = summary
		r.ReplySentiment = sentiment
	}
	return nil
}

func (m *memRecipientRepo) StatusCounts(campaignID int) (map[string]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := map[string]int{
		model.RecipientPendente:   0,
		model.RecipientEnviado:    0,
		model.RecipientRespondido: 0,
		model.RecipientErro:       0,
	}
	for _, r := range m.recipients {
		if r.CampaignID == campaignID {
			counts[r.Status]++
		}
	}
	return counts, nil
}

func (m *memRecipientRepo) byPhone(phone string) *model.Recipient {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.recipients {
		if r.Phone == phone {
			clone := *r
			return &clone
		}
	}
	return nil
}

// --- In-memory contact repository ---

type memContactRepo struct {
	contacts []model.Contact
}

func (m *memContactRepo) GetByID(id int) (*model.Contact, error) {
	for _, c := range m.contacts {
		if c.ID == id {
			clone := c
			return &clone, nil
		}
	}
	return nil, nil
}

func (m *memContactRepo) ListByOrganization(organizationID int) ([]model.Contact, error) {
	out := []model.Contact{}
	for _, c := range m.contacts {
		if c.OrganizationID == organizationID {
			out = append(out, c)
		}
	}
	return out, nil
}

var _ repository.CampaignRepositoryInterface = (*memCampaignRepo)(nil)
var _ repository.SenderRepositoryInterface = (*memSenderRepo)(nil)
var _ repository.RecipientRepositoryInterface = (*memRecipientRepo)(nil)
var _ repository.ContactRepositoryInterface = (*memContactRepo)(nil)
