// Copyright 2026 PingCAP, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// See the License for the specific language governing permissions and
// limitations under the License.

package status

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/pprof"
	"os"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pingcap/actorflow/pkg/actor"
	cerrors "github.com/pingcap/actorflow/pkg/errors"
	"github.com/pingcap/actorflow/pkg/logutil"
	"github.com/pingcap/actorflow/pkg/version"
	"github.com/pingcap/errors"
	"github.com/pingcap/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const httpConnectionTimeout = 10 * time.Second

// Status is the response of the `/status` API.
type Status struct {
	Version    string `json:"version"`
	GitHash    string `json:"git_hash"`
	SystemID   string `json:"system_id"`
	System     string `json:"system"`
	LiveActors int    `json:"live_actors"`
	Pid        int    `json:"pid"`
}

// HTTPError is the error body returned by the status APIs.
type HTTPError struct {
	Error string `json:"error_msg"`
	Code  string `json:"error_code"`
}

func newHTTPError(err error) HTTPError {
	return HTTPError{Error: err.Error(), Code: cerrors.RFCCode(err)}
}

// RegisterRoutes registers the status, admin, pprof and metrics routes.
func RegisterRoutes(router *gin.Engine, sys *actor.System, registry prometheus.Gatherer) {
	router.GET("/status", func(c *gin.Context) {
		c.IndentedJSON(http.StatusOK, &Status{
			Version:    version.ReleaseVersion,
			GitHash:    version.GitHash,
			SystemID:   sys.ID(),
			System:     sys.Name(),
			LiveActors: sys.NumActors(),
			Pid:        os.Getpid(),
		})
	})

	router.POST("/admin/log", handleAdminLogLevel)

	pprofGroup := router.Group("/debug/pprof/")
	pprofGroup.GET("", gin.WrapF(pprof.Index))
	pprofGroup.GET("/:any", gin.WrapF(pprof.Index))
	pprofGroup.GET("/cmdline", gin.WrapF(pprof.Cmdline))
	pprofGroup.GET("/profile", gin.WrapF(pprof.Profile))
	pprofGroup.GET("/symbol", gin.WrapF(pprof.Symbol))
	pprofGroup.GET("/trace", gin.WrapF(pprof.Trace))

	router.Any("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
}

// handleAdminLogLevel changes the log level. The body is a JSON string such
// as "debug".
func handleAdminLogLevel(c *gin.Context) {
	var level string
	if err := c.ShouldBindJSON(&level); err != nil {
		c.IndentedJSON(http.StatusBadRequest, newHTTPError(
			cerrors.ErrAPIInvalidParam.GenWithStackByArgs(err.Error())))
		return
	}
	if err := logutil.SetLogLevel(level); err != nil {
		c.IndentedJSON(http.StatusBadRequest, newHTTPError(
			cerrors.ErrAPIInvalidParam.GenWithStackByArgs(err.Error())))
		return
	}
	log.Warn("log level changed", zap.String("level", level))
	c.IndentedJSON(http.StatusOK, struct{}{})
}

// Server serves the status routes of an actor system.
type Server struct {
	lis    net.Listener
	server *http.Server
	wg     sync.WaitGroup
}

// NewServer listens on addr. Serving starts with Run.
func NewServer(addr string, sys *actor.System, registry prometheus.Gatherer) (*Server, error) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, cerrors.WrapError(cerrors.ErrServeHTTP, err)
	}

	// discard gin log output
	gin.DefaultWriter = io.Discard
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	RegisterRoutes(router, sys, registry)

	return &Server{
		lis: lis,
		server: &http.Server{
			Handler:      router,
			ReadTimeout:  httpConnectionTimeout,
			WriteTimeout: httpConnectionTimeout,
		},
	}, nil
}

// Addr returns the address the server listens on.
func (s *Server) Addr() string {
	return s.lis.Addr().String()
}

// Run serves requests in the background until Close is called.
func (s *Server) Run() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		log.Info("status server is running", zap.String("addr", s.Addr()))
		err := s.server.Serve(s.lis)
		if err != nil && err != http.ErrServerClosed {
			log.Error("status server error", zap.Error(cerrors.WrapError(cerrors.ErrServeHTTP, err)))
		}
	}()
}

// Close shuts the server down, waiting for active requests until ctx is done.
func (s *Server) Close(ctx context.Context) error {
	err := s.server.Shutdown(ctx)
	// The listener is only tracked by the server once Serve is called.
	_ = s.lis.Close()
	s.wg.Wait()
	if err != nil {
		return errors.Trace(err)
	}
	return nil
}
