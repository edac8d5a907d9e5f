// Copyright 2022-2026 The N42 Authors
// This file is part of the N42 library.
//
// The N42 library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The N42 library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the N42 library. If not, see <http://www.gnu.org/licenses/>.

package storage

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/starknetcore/storage/storage/schema"
)

var (
	markerGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "storage",
		Name:      "marker",
		Help:      "Current value of each marker, by domain name.",
	}, []string{"domain"})

	revertCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storage",
		Name:      "reverts_total",
		Help:      "Number of domains torn down by revert_block, by domain name.",
	}, []string{"domain"})

	fileStoreBytes = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "storage",
		Name:      "filestore_bytes",
		Help:      "Size in bytes of each append-only file store's live segment file.",
	}, []string{"store"})
)

// observeMarker publishes kind's new value after setMarker commits it;
// it never fails a transaction, since a missed sample only costs one
// scrape's worth of staleness.
func observeMarker(kind schema.MarkerKind, n uint64) {
	markerGauge.WithLabelValues(kind.String()).Set(float64(n))
}

// observeRevert records that kind was torn down by a RevertBlock call.
func observeRevert(kind schema.MarkerKind) {
	revertCounter.WithLabelValues(kind.String()).Inc()
}

// observeFileStoreSize publishes a file store's current on-disk size,
// called after Open and after every AppendX call that writes a blob.
func observeFileStoreSize(store string, bytes int64) {
	fileStoreBytes.WithLabelValues(store).Set(float64(bytes))
}
