package client

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"waymate/models"
	"waymate/utils"

	"github.com/gin-gonic/gin"
)

// fakeBackend is an in-memory coordination server with the same atomic
// assignment semantics as the real store: add-if-absent under a lock, so
// concurrent accepts can never overwrite each other.
type fakeBackend struct {
	mu         sync.Mutex
	travellers map[string]*models.Traveller
	profiles   map[string]models.UserProfile
	roster     []models.SupporterInfo

	server *httptest.Server
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	gin.SetMode(gin.TestMode)

	b := &fakeBackend{
		travellers: make(map[string]*models.Traveller),
		profiles:   make(map[string]models.UserProfile),
	}

	r := gin.New()
	r.GET("/api/travellers/id/:id", b.getTraveller)
	r.POST("/api/travellers/id/:id/activate", b.activate)
	r.POST("/api/travellers/id/:id/resolve", b.resolve)
	r.POST("/api/travellers/id/:id/contacts", b.addContact)
	r.DELETE("/api/travellers/id/:id/contacts/:supporterId", b.removeContact)
	r.GET("/api/travellers/sos/supporter/:id", b.supporterFeed)
	r.GET("/api/admin/sos", b.allSOS)
	r.POST("/api/admin/sos/:id/resolve", b.resolve)
	r.POST("/api/admin/sos/:id/contacts", b.addContact)
	r.DELETE("/api/admin/sos/:id/contacts/:supporterId", b.removeContact)
	r.GET("/api/admin/supporters", b.supporters)

	b.server = httptest.NewServer(r)
	t.Cleanup(b.server.Close)
	return b
}

func (b *fakeBackend) client() *Client {
	c := New(b.server.URL)
	c.Token = "test-token"
	c.DeviceID = "dev-1"
	c.DeviceName = "test device"
	return c
}

func (b *fakeBackend) seedTraveller(tr *models.Traveller) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.travellers[tr.UserID] = tr
}

func (b *fakeBackend) seedUser(p models.UserProfile) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.profiles[p.ID] = p
}

func (b *fakeBackend) seedSupporter(info models.SupporterInfo) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.roster = append(b.roster, info)
}

func (b *fakeBackend) snapshot(id string) models.Traveller {
	b.mu.Lock()
	defer b.mu.Unlock()
	return *b.travellers[id]
}

func (b *fakeBackend) getTraveller(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	tr, ok := b.travellers[c.Param("id")]
	if !ok {
		utils.JSONError(c, http.StatusNotFound, "Traveller not found")
		return
	}
	cp := *tr
	utils.JSONData(c, http.StatusOK, cp)
}

func (b *fakeBackend) activate(c *gin.Context) {
	var req struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid body")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	tr, ok := b.travellers[c.Param("id")]
	if !ok {
		utils.JSONError(c, http.StatusNotFound, "Traveller not found")
		return
	}
	tr.Latitude = req.Latitude
	tr.Longitude = req.Longitude
	tr.IsSafe = false
	tr.IsSharedLocation = true
	tr.EmergencyContacts = models.ContactList{}
	tr.UpdatedAt = time.Now().UTC()
	cp := *tr
	utils.JSONData(c, http.StatusOK, cp)
}

func (b *fakeBackend) resolve(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	tr, ok := b.travellers[c.Param("id")]
	if !ok {
		utils.JSONError(c, http.StatusNotFound, "Traveller not found")
		return
	}
	tr.IsSafe = true
	tr.IsSharedLocation = false
	tr.EmergencyContacts = models.ContactList{}
	tr.UpdatedAt = time.Now().UTC()
	cp := *tr
	utils.JSONData(c, http.StatusOK, cp)
}

func (b *fakeBackend) addContact(c *gin.Context) {
	var req struct {
		SupporterID string `json:"supporter_id"`
	}
	_ = c.ShouldBindJSON(&req)
	if req.SupporterID == "" {
		utils.JSONError(c, http.StatusBadRequest, "supporter_id is required")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	tr, ok := b.travellers[c.Param("id")]
	if !ok {
		utils.JSONError(c, http.StatusNotFound, "Traveller not found")
		return
	}
	if tr.IsSafe {
		utils.JSONError(c, http.StatusConflict, "Traveller has no active SOS")
		return
	}
	list, added := tr.EmergencyContacts.Add(req.SupporterID)
	if !added {
		utils.JSONError(c, http.StatusConflict, "Supporter is already assigned to this SOS")
		return
	}
	tr.EmergencyContacts = list
	tr.UpdatedAt = time.Now().UTC()
	cp := *tr
	utils.JSONData(c, http.StatusOK, cp)
}

func (b *fakeBackend) removeContact(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	tr, ok := b.travellers[c.Param("id")]
	if !ok {
		utils.JSONError(c, http.StatusNotFound, "Traveller not found")
		return
	}
	tr.EmergencyContacts = tr.EmergencyContacts.Remove(c.Param("supporterId"))
	cp := *tr
	utils.JSONData(c, http.StatusOK, cp)
}

func (b *fakeBackend) supporterFeed(c *gin.Context) {
	supporterID := c.Param("id")
	b.mu.Lock()
	defer b.mu.Unlock()
	records := []models.SOSRecord{}
	for _, tr := range b.travellers {
		if tr.IsSafe {
			continue
		}
		if len(tr.EmergencyContacts) == 0 || tr.EmergencyContacts.Contains(supporterID) {
			records = append(records, models.SOSRecord{Traveller: *tr, User: b.profiles[tr.UserID]})
		}
	}
	utils.JSONData(c, http.StatusOK, records)
}

func (b *fakeBackend) allSOS(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	records := []models.SOSRecord{}
	for _, tr := range b.travellers {
		records = append(records, models.SOSRecord{Traveller: *tr, User: b.profiles[tr.UserID]})
	}
	utils.JSONData(c, http.StatusOK, records)
}

func (b *fakeBackend) supporters(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	utils.JSONData(c, http.StatusOK, b.roster)
}

// recordingNotifier captures local notifications.
type recordingNotifier struct {
	mu    sync.Mutex
	calls []string
}

func (n *recordingNotifier) Notify(title, _ string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, title)
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.calls)
}
