package catalog

import (
	"context"
	"fmt"

	"github.com/qubitlabs/mediakeeper/internal/common"
	"github.com/qubitlabs/mediakeeper/internal/feed"
	"github.com/qubitlabs/mediakeeper/internal/models"
)

func sampleVideos() []models.Video {
	return []models.Video{
		{
			ID:           "1",
			Title:        "Introduction to Quantum Computing",
			Description:  "A comprehensive introduction to quantum computing principles and applications.",
			ThumbnailURL: "/placeholder.svg",
			VideoURL:     "https://example.com/video1.mp4",
			Duration:     "45:30",
			UploadedAt:   "2024-01-15",
			ChannelName:  "Quantum Academy",
			IsPremium:    false,
		},
		{
			ID:           "2",
			Title:        "Advanced Quantum Algorithms",
			Description:  "Deep dive into Shor's algorithm, Grover's algorithm, and other quantum algorithms.",
			ThumbnailURL: "/placeholder.svg",
			VideoURL:     "https://example.com/video2.mp4",
			Duration:     "62:15",
			UploadedAt:   "2024-01-20",
			ChannelName:  "Quantum Research Lab",
			IsPremium:    true,
		},
		{
			ID:           "3",
			Title:        "Quantum Error Correction",
			Description:  "Understanding quantum error correction codes and fault-tolerant quantum computing.",
			ThumbnailURL: "/placeholder.svg",
			VideoURL:     "https://example.com/video3.mp4",
			Duration:     "38:45",
			UploadedAt:   "2024-01-25",
			ChannelName:  "Quantum Academy",
			IsPremium:    true,
		},
	}
}

func sampleDocuments() []models.Document {
	return []models.Document{
		{
			ID:          "1",
			Title:       "Quantum Computing Fundamentals",
			Description: "A beginner-friendly guide to quantum computing concepts.",
			FileType:    "pdf",
			FileURL:     "https://example.com/quantum-fundamentals.pdf",
			UploadedAt:  "2024-01-10",
			FileSize:    "2.4 MB",
			Category:    "Getting Started",
			IsPremium:   false,
		},
		{
			ID:          "2",
			Title:       "Advanced Quantum Mechanics",
			Description: "In-depth exploration of quantum mechanical principles.",
			FileType:    "pdf",
			FileURL:     "https://example.com/advanced-quantum.pdf",
			UploadedAt:  "2024-01-12",
			FileSize:    "5.8 MB",
			Category:    "Advanced Techniques",
			IsPremium:   true,
		},
		{
			ID:          "3",
			Title:       "Quantum Algorithm Implementation",
			Description: "Practical guide to implementing quantum algorithms.",
			FileType:    "ppt",
			FileURL:     "https://example.com/quantum-algorithms.pptx",
			UploadedAt:  "2024-01-18",
			FileSize:    "12.3 MB",
			Category:    "Quantum Computing",
			IsPremium:   true,
		},
		{
			ID:          "4",
			Title:       "Research Methodology Guide",
			Description: "Best practices for quantum computing research.",
			FileType:    "zip",
			FileURL:     "https://example.com/research-guide.zip",
			UploadedAt:  "2024-01-22",
			FileSize:    "8.7 MB",
			Category:    "Research Methods",
			IsPremium:   false,
		},
	}
}

func samplePatents() []models.Patent {
	return []models.Patent{
		{
			ID:              "1",
			Title:           "Quantum Error Correction System",
			Abstract:        "A novel approach to quantum error correction using topological qubits.",
			Inventors:       []string{"Dr. Alice Johnson", "Dr. Bob Smith"},
			FilingDate:      "2023-06-15",
			PublicationDate: "2023-12-15",
			PatentNumber:    "US11234567B2",
			Status:          models.PatentGranted,
			IsPremium:       false,
		},
		{
			ID:              "2",
			Title:           "Quantum Cryptography Protocol",
			Abstract:        "Advanced quantum key distribution protocol for secure communications.",
			Inventors:       []string{"Dr. Carol Wilson", "Dr. David Brown"},
			FilingDate:      "2023-08-20",
			PublicationDate: "2024-02-20",
			PatentNumber:    "US11345678B2",
			Status:          models.PatentPending,
			IsPremium:       true,
		},
		{
			ID:              "3",
			Title:           "Quantum Computing Architecture",
			Abstract:        "Scalable quantum computing architecture for fault-tolerant operations.",
			Inventors:       []string{"Dr. Eve Davis", "Dr. Frank Miller"},
			FilingDate:      "2023-09-10",
			PublicationDate: "2024-03-10",
			PatentNumber:    "US11456789B2",
			Status:          models.PatentGranted,
			IsPremium:       true,
		},
	}
}

// seed writes the sample catalog and the feed derived from it. Runs only
// when all three collections came back empty.
func (s *Service) seed(ctx context.Context) error {
	videos := sampleVideos()
	documents := sampleDocuments()
	patents := samplePatents()
	updates := feed.BuildRecentUpdates(videos, documents, patents, s.feedLimit, s.now())

	s.mu.Lock()
	s.videos, s.documents, s.patents, s.updates = videos, documents, patents, updates
	s.mu.Unlock()

	if _, err := s.engine.SyncData(ctx, common.KeyVideos, videos); err != nil {
		return fmt.Errorf("seed videos: %w", err)
	}
	if _, err := s.engine.SyncData(ctx, common.KeyDocuments, documents); err != nil {
		return fmt.Errorf("seed documents: %w", err)
	}
	if _, err := s.engine.SyncData(ctx, common.KeyPatents, patents); err != nil {
		return fmt.Errorf("seed patents: %w", err)
	}
	if _, err := s.engine.SyncData(ctx, common.KeyRecentUpdates, updates); err != nil {
		return fmt.Errorf("seed recent updates: %w", err)
	}
	return nil
}
