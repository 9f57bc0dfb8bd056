package main

import (
	"database/sql"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the planning HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		listen := mustEnv("LISTEN_ADDR", "0.0.0.0:8080")
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()
		log.Printf("listening on %s", listen)
		return newRouter(db).Run(listen)
	},
}

type apiSubnet struct {
	Role      string `json:"role"`
	Prefix    int    `json:"prefix,omitempty"`
	UsableIPs uint64 `json:"usable_ips,omitempty"`
}

type apiPlanRequest struct {
	Existing          []string    `json:"existing,omitempty"`
	Snapshot          string      `json:"snapshot,omitempty"`
	Base              string      `json:"base,omitempty"`
	Strategy          string      `json:"strategy,omitempty"`
	StartThirdOctet   *int        `json:"start_third_octet,omitempty"`
	VnetPrefix        int         `json:"vnet_prefix,omitempty"`
	VnetIPs           uint64      `json:"vnet_ips,omitempty"`
	ReservedPerSubnet int         `json:"reserved_per_subnet,omitempty"`
	Subnets           []apiSubnet `json:"subnets"`
}

type apiSnapshotRequest struct {
	Label   string   `json:"label"`
	Source  string   `json:"source,omitempty"`
	Entries []string `json:"entries"`
}

// toPlanRequest maps the wire request onto the planner's request,
// filling the documented defaults.
func (r apiPlanRequest) toPlanRequest() (planRequest, error) {
	req := defaultPlanRequest()
	if r.Base != "" {
		base, err := parseBlock(r.Base)
		if err != nil {
			return planRequest{}, err
		}
		req.Base = base
	}
	if r.Strategy != "" {
		req.Strategy = r.Strategy
	}
	if r.StartThirdOctet != nil {
		req.StartThird = *r.StartThirdOctet
	}
	req.NetworkPrefix = r.VnetPrefix
	req.NetworkIPs = r.VnetIPs
	if r.ReservedPerSubnet > 0 {
		req.ReservedPerSubnet = r.ReservedPerSubnet
	}
	for _, sub := range r.Subnets {
		req.Subnets = append(req.Subnets, subnetRequest{
			Role:      sub.Role,
			Prefix:    sub.Prefix,
			UsableIPs: sub.UsableIPs,
		})
	}
	return req, nil
}

func (r apiPlanRequest) resolveEntries(db *sql.DB) ([]string, error) {
	if r.Snapshot != "" {
		return loadSnapshotEntries(db, r.Snapshot)
	}
	return r.Existing, nil
}

func planFromAPI(db *sql.DB, r apiPlanRequest) (allocationPlan, planRequest, error) {
	req, err := r.toPlanRequest()
	if err != nil {
		return allocationPlan{}, planRequest{}, err
	}
	entries, err := r.resolveEntries(db)
	if err != nil {
		return allocationPlan{}, planRequest{}, err
	}
	existing, err := parseReservations(entries)
	if err != nil {
		return allocationPlan{}, planRequest{}, err
	}
	plan, err := buildPlan(existing, req)
	return plan, req, err
}

func planError(c *gin.Context, err error) {
	if kind := planErrorKind(err); kind != "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error_kind": kind, "error": err.Error()})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func newRouter(db *sql.DB) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	r.POST("/plan", func(c *gin.Context) {
		var body apiPlanRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		plan, req, err := planFromAPI(db, body)
		if err != nil {
			planError(c, err)
			return
		}
		c.JSON(http.StatusOK, buildPlanDocument(plan, req.ReservedPerSubnet))
	})

	r.POST("/plan/export/xlsx", func(c *gin.Context) {
		var body apiPlanRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		plan, req, err := planFromAPI(db, body)
		if err != nil {
			planError(c, err)
			return
		}
		raw, err := planXLSX(plan, req.ReservedPerSubnet)
		if err != nil {
			c.String(http.StatusInternalServerError, err.Error())
			return
		}
		const contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		c.Header("Content-Type", contentType)
		c.Header("Content-Disposition", "attachment; filename=vnetplan.xlsx")
		c.Data(http.StatusOK, contentType, raw)
	})

	r.GET("/snapshots", func(c *gin.Context) {
		snaps, err := listSnapshots(db)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, snaps)
	})

	r.POST("/snapshots", func(c *gin.Context) {
		var body apiSnapshotRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		// Validate before persisting so the store never holds entries
		// that a later plan run would reject.
		if _, err := parseReservations(body.Entries); err != nil {
			planError(c, err)
			return
		}
		source := body.Source
		if source == "" {
			source = "api"
		}
		id, err := saveSnapshot(db, body.Label, source, body.Entries)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"id": id, "label": body.Label})
	})

	r.GET("/snapshots/:label", func(c *gin.Context) {
		label := c.Param("label")
		s, ok, err := snapshotByLabel(db, label)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "snapshot not found"})
			return
		}
		entries, err := snapshotEntries(db, s.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"id": s.ID, "label": s.Label, "source": s.Source,
			"taken_at": s.TakenAt, "entries": entries,
		})
	})

	return r
}
