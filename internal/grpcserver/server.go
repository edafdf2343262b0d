package grpcserver

import (
	"context"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"eventhub/internal/events"
	"eventhub/internal/venues"
	"eventhub/pkg/models"
)

type (
	CategoryView  = events.CategoryView
	ComparisonRow = events.ComparisonRow
	Venue         = models.Venue
)

type Server struct {
	Svc    *events.Service
	Loader *venues.Loader
}

func NewServer(svc *events.Service, loader *venues.Loader) *Server {
	return &Server{Svc: svc, Loader: loader}
}

func (s *Server) ListCategories(ctx context.Context, req *ListCategoriesRequest) (*ListCategoriesResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request required")
	}

	views := events.Views(s.Svc.Categorized())
	if id := strings.TrimSpace(req.CategoryID); id != "" {
		cat, ok := models.CategoryByID(id)
		if !ok {
			return nil, status.Error(codes.NotFound, "unknown category")
		}
		filtered := views[:0:0]
		for _, v := range views {
			if v.Name == cat.Name {
				filtered = append(filtered, v)
			}
		}
		views = filtered
	}

	return &ListCategoriesResponse{
		UpdatedAtUnix: s.Svc.UpdatedAt().Unix(),
		Categories:    views,
	}, nil
}

func (s *Server) Compare(ctx context.Context, req *CompareRequest) (*CompareResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request required")
	}

	key := events.SortKey(strings.ToLower(strings.TrimSpace(req.Sort)))
	switch key {
	case "":
		key = events.SortEnjoyment
	case events.SortEnjoyment, events.SortCrowd, events.SortCost, events.SortRatio:
	default:
		return nil, status.Error(codes.InvalidArgument, "invalid sort key")
	}

	rows := events.Compare(s.Svc.Events(), req.Platform, key)
	return &CompareResponse{Total: len(rows), Items: rows}, nil
}

func (s *Server) ListVenues(ctx context.Context, req *ListVenuesRequest) (*ListVenuesResponse, error) {
	snap, err := s.Loader.Load(ctx)
	return &ListVenuesResponse{Degraded: err != nil, Venues: snap.Venues}, nil
}
