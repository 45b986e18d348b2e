package controller

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"scms/repository"
	"scms/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"gorm.io/gorm"
)

type RatingController struct {
	subcontractorRepository *repository.SubcontractorRepository
	mu                      sync.Mutex
	connections             map[uuid.UUID]map[*websocket.Conn]bool
	lastSent                map[uuid.UUID]repository.RatingAggregate
}

func NewRatingController(db *gorm.DB) *RatingController {
	controller := &RatingController{
		subcontractorRepository: repository.NewSubcontractorRepository(db),
		connections:             make(map[uuid.UUID]map[*websocket.Conn]bool),
		lastSent:                make(map[uuid.UUID]repository.RatingAggregate),
	}
	controller.StartRatingUpdater()
	return controller
}

func setupRatingController(db *gorm.DB) []RouteInfo {
	e := NewRatingController(db)
	basePath := "/subcontractors/:subcontractor_id/rating"
	routes := []RouteInfo{
		{Method: "GET", Path: "", HandlerFunc: e.getRatingHandler()},
		{Method: "GET", Path: "/ws", HandlerFunc: e.RatingWebSocketHandler},
	}
	for i, route := range routes {
		routes[i].Path = basePath + route.Path
	}
	return routes
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// allow any host origin to connect to the websocket
		return true
	},
}

// @id GetSubcontractorRating
// @Description Returns the subcontractor's current rating aggregate
// @Tags ratings
// @Produce json
// @Param subcontractor_id path string true "Subcontractor Id"
// @Success 200 {object} repository.RatingAggregate
// @Router /subcontractors/{subcontractor_id}/rating [get]
func (e *RatingController) getRatingHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		subcontractorId, ok := getSubcontractorId(c)
		if !ok {
			return
		}
		aggregate, err := e.subcontractorRepository.GetAggregate(subcontractorId)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				c.JSON(404, gin.H{"error": "Subcontractor not found"})
			} else {
				c.JSON(500, gin.H{"error": err.Error()})
			}
			return
		}
		c.JSON(200, aggregate)
	}
}

// @id RatingWebSocket
// @Description Websocket for rating updates. Once connected, the client
// @Description receives the current aggregate and a new message whenever it changes.
// @Tags ratings
// @Param subcontractor_id path string true "Subcontractor Id"
// @Success 200 {object} repository.RatingAggregate
// @Router /subcontractors/{subcontractor_id}/rating/ws [get]
func (e *RatingController) RatingWebSocketHandler(c *gin.Context) {
	subcontractorId, ok := getSubcontractorId(c)
	if !ok {
		return
	}
	aggregate, err := e.subcontractorRepository.GetAggregate(subcontractorId)
	if err != nil {
		http.NotFound(c.Writer, c.Request)
		return
	}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		http.NotFound(c.Writer, c.Request)
		return
	}
	defer conn.Close()

	// Send the latest aggregate to the new subscriber
	serialized, err := json.Marshal(aggregate)
	if err != nil {
		return
	}
	if err := conn.WriteMessage(websocket.TextMessage, serialized); err != nil {
		return
	}

	e.mu.Lock()
	if _, ok := e.connections[subcontractorId]; !ok {
		e.connections[subcontractorId] = make(map[*websocket.Conn]bool)
	}
	e.connections[subcontractorId][conn] = true
	e.lastSent[subcontractorId] = *aggregate
	e.mu.Unlock()

	for {
		_, _, err := conn.ReadMessage()
		if err != nil {
			e.mu.Lock()
			delete(e.connections[subcontractorId], conn)
			if len(e.connections[subcontractorId]) == 0 {
				delete(e.connections, subcontractorId)
				delete(e.lastSent, subcontractorId)
			}
			e.mu.Unlock()
			return
		}
	}
}

func (e *RatingController) StartRatingUpdater() {
	go func() {
		for {
			e.mu.Lock()
			// only poll subcontractors with active websocket connections
			subcontractorIds := utils.Keys(e.connections)
			e.mu.Unlock()
			for _, subcontractorId := range subcontractorIds {
				aggregate, err := e.subcontractorRepository.GetAggregate(subcontractorId)
				if err != nil {
					continue
				}
				e.mu.Lock()
				if last, ok := e.lastSent[subcontractorId]; ok && last == *aggregate {
					e.mu.Unlock()
					continue
				}
				serialized, err := json.Marshal(aggregate)
				if err != nil {
					e.mu.Unlock()
					continue
				}
				for conn := range e.connections[subcontractorId] {
					if err := conn.WriteMessage(websocket.TextMessage, serialized); err != nil {
						conn.Close()
						delete(e.connections[subcontractorId], conn)
					}
				}
				e.lastSent[subcontractorId] = *aggregate
				e.mu.Unlock()
			}
			time.Sleep(5 * time.Second)
		}
	}()
}
