package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// Stats is a response body for /api/stats
type Stats struct {
	Frame     int       `json:"frame"`
	Live      int       `json:"live_tracks"`
	NextID    int       `json:"next_id"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SetRouter builds routes serving read-only view of the hub
func SetRouter(hub *StateHub) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	apiRoutes := r.Group("/api")

	apiRoutes.GET("/tracks", func(ctx *gin.Context) {
		snapshot := hub.Get()
		ctx.JSON(http.StatusOK, snapshot.Objects.Sorted())
	})

	apiRoutes.GET("/tracks/:id", func(ctx *gin.Context) {
		id, err := strconv.Atoi(ctx.Param("id"))
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "id must be an integer"})
			return
		}
		object, ok := hub.Get().Objects[id]
		if !ok {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "no such track"})
			return
		}
		ctx.JSON(http.StatusOK, object)
	})

	apiRoutes.GET("/stats", func(ctx *gin.Context) {
		snapshot := hub.Get()
		ctx.JSON(http.StatusOK, Stats{
			Frame:     snapshot.Frame,
			Live:      len(snapshot.Objects),
			NextID:    snapshot.NextID,
			UpdatedAt: snapshot.UpdatedAt,
		})
	})

	return r
}
