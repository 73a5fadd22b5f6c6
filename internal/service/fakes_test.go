package service

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"gptteam/seathub/internal/chatgpt"
	"gptteam/seathub/internal/model"
	"gptteam/seathub/internal/repository"
)

type fakeTeamRepo struct {
	mu    sync.Mutex
	teams map[uuid.UUID]*model.Team
}

func newFakeTeamRepo(teams ...*model.Team) *fakeTeamRepo {
	r := &fakeTeamRepo{teams: make(map[uuid.UUID]*model.Team)}
	for _, t := range teams {
		if t.ID == uuid.Nil {
			t.ID = uuid.New()
		}
		r.teams[t.ID] = t
	}
	return r
}

func (r *fakeTeamRepo) Create(_ context.Context, team *model.Team) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if team.ID == uuid.Nil {
		team.ID = uuid.New()
	}
	copied := *team
	r.teams[team.ID] = &copied
	return nil
}

func (r *fakeTeamRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	team, ok := r.teams[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *team
	return &copied, nil
}

func (r *fakeTeamRepo) GetByAccountID(_ context.Context, accountID string) (*model.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, team := range r.teams {
		if team.AccountID == accountID {
			copied := *team
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeTeamRepo) List(_ context.Context) ([]model.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Team, 0, len(r.teams))
	for _, team := range r.teams {
		out = append(out, *team)
	}
	return out, nil
}

func (r *fakeTeamRepo) ListEnabled(_ context.Context) ([]model.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Team, 0, len(r.teams))
	for _, team := range r.teams {
		if team.Enabled {
			out = append(out, *team)
		}
	}
	return out, nil
}

func (r *fakeTeamRepo) Update(_ context.Context, team *model.Team) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.teams[team.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	copied := *team
	r.teams[team.ID] = &copied
	return nil
}

func (r *fakeTeamRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.teams, id)
	return nil
}

type fakeCodeRepo struct {
	mu    sync.Mutex
	codes map[string]*model.RedemptionCode
}

func newFakeCodeRepo(codes ...*model.RedemptionCode) *fakeCodeRepo {
	r := &fakeCodeRepo{codes: make(map[string]*model.RedemptionCode)}
	for _, c := range codes {
		if c.ID == uuid.Nil {
			c.ID = uuid.New()
		}
		r.codes[c.Code] = c
	}
	return r
}

func (r *fakeCodeRepo) CreateBatch(_ context.Context, codes []*model.RedemptionCode) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range codes {
		if c.ID == uuid.Nil {
			c.ID = uuid.New()
		}
		copied := *c
		r.codes[c.Code] = &copied
	}
	return nil
}

func (r *fakeCodeRepo) GetByCode(_ context.Context, code string) (*model.RedemptionCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.codes[code]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *stored
	return &copied, nil
}

func (r *fakeCodeRepo) List(_ context.Context, filter repository.CodeFilter) ([]model.RedemptionCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.RedemptionCode, 0, len(r.codes))
	for _, c := range r.codes {
		if filter.Status != "" && c.Status != filter.Status {
			continue
		}
		if filter.TeamID != nil && (c.TeamID == nil || *c.TeamID != *filter.TeamID) {
			continue
		}
		if filter.BatchID != "" && c.BatchID != filter.BatchID {
			continue
		}
		out = append(out, *c)
	}
	return out, nil
}

func (r *fakeCodeRepo) Update(_ context.Context, code *model.RedemptionCode) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.codes[code.Code]; !ok {
		return gorm.ErrRecordNotFound
	}
	copied := *code
	r.codes[code.Code] = &copied
	return nil
}

func (r *fakeCodeRepo) Delete(_ context.Context, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.codes, code)
	return nil
}

func (r *fakeCodeRepo) DeleteBatch(_ context.Context, codes []string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, code := range codes {
		if _, ok := r.codes[code]; ok {
			delete(r.codes, code)
			n++
		}
	}
	return n, nil
}

type fakeRecordRepo struct {
	mu      sync.Mutex
	records map[uuid.UUID]*model.RedemptionRecord
}

func newFakeRecordRepo(records ...*model.RedemptionRecord) *fakeRecordRepo {
	r := &fakeRecordRepo{records: make(map[uuid.UUID]*model.RedemptionRecord)}
	for _, rec := range records {
		if rec.ID == uuid.Nil {
			rec.ID = uuid.New()
		}
		r.records[rec.ID] = rec
	}
	return r
}

func (r *fakeRecordRepo) Create(_ context.Context, record *model.RedemptionRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	copied := *record
	r.records[record.ID] = &copied
	return nil
}

func (r *fakeRecordRepo) GetByID(_ context.Context, id uuid.UUID) (*model.RedemptionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.records[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *record
	return &copied, nil
}

func (r *fakeRecordRepo) List(_ context.Context) ([]model.RedemptionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.RedemptionRecord, 0, len(r.records))
	for _, rec := range r.records {
		out = append(out, *rec)
	}
	return out, nil
}

func (r *fakeRecordRepo) ListByTeam(_ context.Context, teamID uuid.UUID) ([]model.RedemptionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.RedemptionRecord, 0)
	for _, rec := range r.records {
		if rec.TeamID == teamID {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (r *fakeRecordRepo) Update(_ context.Context, record *model.RedemptionRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[record.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	copied := *record
	r.records[record.ID] = &copied
	return nil
}

type fakeSettingRepo struct {
	mu     sync.Mutex
	values map[string]string
}

func newFakeSettingRepo() *fakeSettingRepo {
	return &fakeSettingRepo{values: make(map[string]string)}
}

func (r *fakeSettingRepo) Get(_ context.Context, key string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.values[key], nil
}

func (r *fakeSettingRepo) Set(_ context.Context, key, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values[key] = value
	return nil
}

// fakeUpstream lets each test script the upstream responses and inspect what
// was called.
type fakeUpstream struct {
	inviteResult       chatgpt.Result
	membersResult      chatgpt.MembersResult
	invitesResult      chatgpt.InvitesResult
	revokeResult       chatgpt.Result
	removeResult       chatgpt.Result
	accountsResult     chatgpt.AccountsResult
	sessionTokenResult chatgpt.TokenResult
	refreshTokenResult chatgpt.TokenResult

	invitedEmails  []string
	removedUserIDs []string
	revokedEmails  []string
}

func (f *fakeUpstream) SendInvite(_ context.Context, _, _, email string) chatgpt.Result {
	f.invitedEmails = append(f.invitedEmails, email)
	return f.inviteResult
}

func (f *fakeUpstream) Members(_ context.Context, _, _ string) chatgpt.MembersResult {
	return f.membersResult
}

func (f *fakeUpstream) Invites(_ context.Context, _, _ string) chatgpt.InvitesResult {
	return f.invitesResult
}

func (f *fakeUpstream) RevokeInvite(_ context.Context, _, _, email string) chatgpt.Result {
	f.revokedEmails = append(f.revokedEmails, email)
	return f.revokeResult
}

func (f *fakeUpstream) RemoveMember(_ context.Context, _, _, userID string) chatgpt.Result {
	f.removedUserIDs = append(f.removedUserIDs, userID)
	return f.removeResult
}

func (f *fakeUpstream) AccountInfo(_ context.Context, _ string) chatgpt.AccountsResult {
	return f.accountsResult
}

func (f *fakeUpstream) RefreshWithSessionToken(_ context.Context, _ string) chatgpt.TokenResult {
	return f.sessionTokenResult
}

func (f *fakeUpstream) RefreshWithRefreshToken(_ context.Context, _, _ string) chatgpt.TokenResult {
	return f.refreshTokenResult
}

var _ UpstreamClient = (*fakeUpstream)(nil)
