package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/iyannm/word-fuse/internal/domain"
)

// HealthResponse is the response for the health check
type HealthResponse struct {
	Status string `json:"status"`
}

// StatsResponse is the response for the stats endpoint
type StatsResponse struct {
	ActiveRooms     int `json:"activeRooms"`
	TotalPlayers    int `json:"totalPlayers"`
	DictionaryWords int `json:"dictionaryWords"`
}

// RoomExistsResponse is the response for the room-exists check
type RoomExistsResponse struct {
	RoomCode string `json:"roomCode"`
	Exists   bool   `json:"exists"`
}

// handleHealth handles GET /api/health
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, &HealthResponse{Status: "ok"})
}

// handleStats handles GET /api/stats
func (s *Server) handleStats(c *gin.Context) {
	c.JSON(http.StatusOK, &StatsResponse{
		ActiveRooms:     s.hub.RoomCount(),
		TotalPlayers:    s.hub.PlayerCount(),
		DictionaryWords: s.hub.DictionarySize(),
	})
}

// handleRoomExists handles GET /api/rooms/:code/exists, letting a front-end
// validate a code before opening the socket.
func (s *Server) handleRoomExists(c *gin.Context) {
	code := domain.NormalizeCode(c.Param("code"))
	c.JSON(http.StatusOK, &RoomExistsResponse{
		RoomCode: code,
		Exists:   s.hub.RoomExists(code),
	})
}
