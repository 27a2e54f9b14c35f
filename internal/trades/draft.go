package trades

import (
	"strconv"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/thushan99/homelife-backoffice/internal/commission"
	"github.com/thushan99/homelife-backoffice/internal/trust"
)

// Draft is the in-progress edit of a trade. Each section has a named setter
// and every setter re-derives the dependent figures immediately, replacing
// the piecemeal cross-tab mutation of the old workflow. Drafts live only in
// the draft store until an explicit save replaces the persisted document.
type Draft struct {
	Trade Trade `json:"trade"`
}

// NewDraft starts a draft from a persisted trade (or a zero Trade for new).
func NewDraft(t Trade) *Draft {
	d := &Draft{Trade: t}
	d.Trade.Rederive()
	return d
}

// SetKeyInfo replaces the key-info tab and re-derives commission and AR.
func (d *Draft) SetKeyInfo(info KeyInfo) {
	d.Trade.KeyInfo = info
	d.Trade.Rederive()
}

// SetPeople replaces the people tab.
func (d *Draft) SetPeople(people []Person) {
	d.Trade.People = people
}

// SetOutsideBrokers replaces the outside-brokers contact list.
func (d *Draft) SetOutsideBrokers(brokers []Person) {
	d.Trade.OutsideBrokers = brokers
}

// SetOutsideBrokerRow replaces the commission tab's broker row. Only the
// agent and brokerage names are caller-controlled; the monetary fields are
// overwritten by the sync rule on re-derivation.
func (d *Draft) SetOutsideBrokerRow(row commission.OutsideBrokerRow) {
	d.Trade.Commission.OutsideBrokersRows = []commission.OutsideBrokerRow{row}
	d.Trade.Rederive()
}

// SetTrustRecords replaces the trust tab and re-derives AR.
func (d *Draft) SetTrustRecords(records []trust.Record) {
	d.Trade.TrustRecords = records
	d.Trade.Rederive()
}

// DraftStore keeps drafts server-side with a TTL so abandoned edits expire
// instead of accumulating.
type DraftStore struct {
	cache *gocache.Cache
}

// NewDraftStore constructs DraftStore with the supplied TTL.
func NewDraftStore(ttl time.Duration) *DraftStore {
	if ttl <= 0 {
		ttl = 4 * time.Hour
	}
	return &DraftStore{cache: gocache.New(ttl, ttl)}
}

// Put stores a draft keyed by trade number.
func (s *DraftStore) Put(tradeNumber int64, draft *Draft) {
	s.cache.SetDefault(key(tradeNumber), draft)
}

// Get returns the draft for a trade, or nil when none is active.
func (s *DraftStore) Get(tradeNumber int64) *Draft {
	if v, ok := s.cache.Get(key(tradeNumber)); ok {
		return v.(*Draft)
	}
	return nil
}

// Drop discards a draft, typically after save or cancel.
func (s *DraftStore) Drop(tradeNumber int64) {
	s.cache.Delete(key(tradeNumber))
}

func key(tradeNumber int64) string {
	return "trade-draft:" + strconv.FormatInt(tradeNumber, 10)
}
