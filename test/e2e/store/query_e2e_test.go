package store_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"ecotrack.dev/ecotrack/internal/store"
)

func mustZone(ctx context.Context, name string) *store.Zone {
	zone := &store.Zone{Name: name}
	Expect(st.CreateZone(ctx, zone)).To(Succeed())
	return zone
}

func mustSource(ctx context.Context, name string) *store.Source {
	source := &store.Source{Name: name}
	Expect(st.CreateSource(ctx, source)).To(Succeed())
	return source
}

func mustIndicator(ctx context.Context, kind string, value float64, ts time.Time, zoneID, sourceID uint) *store.Indicator {
	indicator := &store.Indicator{
		Kind:      kind,
		Value:     value,
		Unit:      "u",
		Timestamp: ts,
		ZoneID:    zoneID,
		SourceID:  sourceID,
	}
	Expect(st.CreateIndicator(ctx, indicator)).To(Succeed())
	return indicator
}

var _ = Describe("Indicator queries", func() {
	var (
		ctx    context.Context
		zone   *store.Zone
		source *store.Source
	)

	BeforeEach(func() {
		ctx = context.Background()
		resetTables()
		zone = mustZone(ctx, "Paris")
		source = mustSource(ctx, "Atmo France")
	})

	Describe("Pagination", func() {
		BeforeEach(func() {
			base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
			for i := range 150 {
				mustIndicator(ctx, "co2", float64(i), base.Add(time.Duration(i)*time.Hour), zone.ID, source.ID)
			}
		})

		It("should window 150 readings into a page of 100 and a page of 50", func() {
			first, err := st.ListIndicators(ctx, store.Filter{}, store.Sort{}, store.PageParams{Skip: 0, Limit: 100})
			Expect(err).NotTo(HaveOccurred())
			Expect(first.Items).To(HaveLen(100))
			Expect(first.Total).To(Equal(int64(150)))
			Expect(first.HasNext).To(BeTrue())
			Expect(first.HasPrev).To(BeFalse())

			second, err := st.ListIndicators(ctx, store.Filter{}, store.Sort{}, store.PageParams{Skip: 100, Limit: 100})
			Expect(err).NotTo(HaveOccurred())
			Expect(second.Items).To(HaveLen(50))
			Expect(second.Total).To(Equal(int64(150)))
			Expect(second.HasNext).To(BeFalse())
			Expect(second.HasPrev).To(BeTrue())
		})

		It("should not overlap between consecutive pages", func() {
			seen := map[uint]struct{}{}
			for skip := 0; skip < 150; skip += 50 {
				page, err := st.ListIndicators(ctx, store.Filter{}, store.Sort{}, store.PageParams{Skip: skip, Limit: 50})
				Expect(err).NotTo(HaveOccurred())
				for _, item := range page.Items {
					_, dup := seen[item.ID]
					Expect(dup).To(BeFalse(), "indicator %d appeared twice", item.ID)
					seen[item.ID] = struct{}{}
				}
			}
			Expect(seen).To(HaveLen(150))
		})

		It("should return an empty page when skip exceeds total", func() {
			page, err := st.ListIndicators(ctx, store.Filter{}, store.Sort{}, store.PageParams{Skip: 500, Limit: 100})
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Items).To(BeEmpty())
			Expect(page.Items).NotTo(BeNil())
			Expect(page.Total).To(Equal(int64(150)))
			Expect(page.HasNext).To(BeFalse())
			Expect(page.HasPrev).To(BeTrue())
		})

		It("should count without fetching when limit is zero", func() {
			page, err := st.ListIndicators(ctx, store.Filter{}, store.Sort{}, store.PageParams{Skip: 0, Limit: 0})
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Items).To(BeEmpty())
			Expect(page.Total).To(Equal(int64(150)))
		})

		It("should reject a negative skip", func() {
			_, err := st.ListIndicators(ctx, store.Filter{}, store.Sort{}, store.PageParams{Skip: -1, Limit: 10})
			Expect(errors.Is(err, store.ErrInvalidArgument)).To(BeTrue())
		})
	})

	Describe("Sorting", func() {
		It("should order by timestamp descending by default", func() {
			early := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
			late := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
			mustIndicator(ctx, "co2", 1, early, zone.ID, source.ID)
			mustIndicator(ctx, "co2", 2, late, zone.ID, source.ID)

			sort, err := store.ResolveSort("", "")
			Expect(err).NotTo(HaveOccurred())

			page, err := st.ListIndicators(ctx, store.Filter{}, sort, store.DefaultPageParams())
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Items).To(HaveLen(2))
			Expect(page.Items[0].Value).To(Equal(2.0))
			Expect(page.Items[1].Value).To(Equal(1.0))
		})

		It("should break timestamp ties by id ascending", func() {
			ts := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
			var ids []uint
			for range 5 {
				ind := mustIndicator(ctx, "co2", 1, ts, zone.ID, source.ID)
				ids = append(ids, ind.ID)
			}

			sort, err := store.ResolveSort("timestamp", "desc")
			Expect(err).NotTo(HaveOccurred())

			page, err := st.ListIndicators(ctx, store.Filter{}, sort, store.DefaultPageParams())
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Items).To(HaveLen(5))
			for i, item := range page.Items {
				Expect(item.ID).To(Equal(ids[i]))
			}
		})

		It("should paginate identically across repeated queries", func() {
			ts := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
			for range 20 {
				mustIndicator(ctx, "co2", 1, ts, zone.ID, source.ID)
			}

			sort, err := store.ResolveSort("value", "asc")
			Expect(err).NotTo(HaveOccurred())

			firstRun, err := st.ListIndicators(ctx, store.Filter{}, sort, store.PageParams{Skip: 5, Limit: 5})
			Expect(err).NotTo(HaveOccurred())
			secondRun, err := st.ListIndicators(ctx, store.Filter{}, sort, store.PageParams{Skip: 5, Limit: 5})
			Expect(err).NotTo(HaveOccurred())

			for i := range firstRun.Items {
				Expect(firstRun.Items[i].ID).To(Equal(secondRun.Items[i].ID))
			}
		})

		It("should sort by value ascending", func() {
			ts := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
			for _, v := range []float64{30, 10, 20} {
				mustIndicator(ctx, "co2", v, ts, zone.ID, source.ID)
			}

			sort, err := store.ResolveSort("value", "asc")
			Expect(err).NotTo(HaveOccurred())

			page, err := st.ListIndicators(ctx, store.Filter{}, sort, store.DefaultPageParams())
			Expect(err).NotTo(HaveOccurred())
			Expect([]float64{page.Items[0].Value, page.Items[1].Value, page.Items[2].Value}).
				To(Equal([]float64{10, 20, 30}))
		})
	})

	Describe("Filtering", func() {
		var lyon *store.Zone

		BeforeEach(func() {
			lyon = mustZone(ctx, "Lyon")
			jan := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
			feb := time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC)

			mustIndicator(ctx, "co2", 1, jan, zone.ID, source.ID)
			mustIndicator(ctx, "co2", 2, feb, zone.ID, source.ID)
			mustIndicator(ctx, "co2", 3, jan, lyon.ID, source.ID)
			mustIndicator(ctx, "air_quality", 4, jan, zone.ID, source.ID)
		})

		It("should apply all predicates conjunctively", func() {
			from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
			to := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)
			f := store.Filter{
				Kind:   "co2",
				ZoneID: &zone.ID,
				From:   &from,
				To:     &to,
			}

			page, err := st.ListIndicators(ctx, f, store.Sort{}, store.DefaultPageParams())
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Items).To(HaveLen(1))
			Expect(page.Items[0].Value).To(Equal(1.0))
			Expect(page.Total).To(Equal(int64(1)))
		})

		It("should filter by kind alone", func() {
			page, err := st.ListIndicators(ctx, store.Filter{Kind: "air_quality"}, store.Sort{}, store.DefaultPageParams())
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Total).To(Equal(int64(1)))
		})

		It("should filter by zone alone", func() {
			page, err := st.ListIndicators(ctx, store.Filter{ZoneID: &lyon.ID}, store.Sort{}, store.DefaultPageParams())
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Total).To(Equal(int64(1)))
			Expect(page.Items[0].Value).To(Equal(3.0))
		})

		It("should treat range bounds as inclusive", func() {
			from := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
			to := time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC)
			f := store.Filter{Kind: "co2", From: &from, To: &to}

			page, err := st.ListIndicators(ctx, f, store.Sort{}, store.DefaultPageParams())
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Total).To(Equal(int64(3)))
		})

		It("should return an empty set when from is after to", func() {
			from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
			to := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
			f := store.Filter{From: &from, To: &to}

			page, err := st.ListIndicators(ctx, f, store.Sort{}, store.DefaultPageParams())
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Items).To(BeEmpty())
			Expect(page.Total).To(BeZero())
			Expect(page.HasNext).To(BeFalse())
			Expect(page.HasPrev).To(BeFalse())
		})
	})

	Describe("Aggregations", func() {
		Describe("AveragesByZone", func() {
			It("should average per zone and omit empty groups", func() {
				lyon := mustZone(ctx, "Lyon")
				mustZone(ctx, "Nice") // no readings
				ts := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

				mustIndicator(ctx, "air_quality", 10, ts, zone.ID, source.ID)
				mustIndicator(ctx, "air_quality", 20, ts, zone.ID, source.ID)
				mustIndicator(ctx, "air_quality", 40, ts, lyon.ID, source.ID)
				mustIndicator(ctx, "co2", 999, ts, zone.ID, source.ID)

				labels, series, err := st.AveragesByZone(ctx, "air_quality", store.Filter{})
				Expect(err).NotTo(HaveOccurred())
				Expect(labels).To(HaveLen(2))
				Expect(series).To(HaveLen(2))

				byZone := map[string]float64{}
				for i, label := range labels {
					byZone[label] = series[i]
				}
				Expect(byZone).To(HaveKeyWithValue("Paris", 15.0))
				Expect(byZone).To(HaveKeyWithValue("Lyon", 40.0))
			})

			It("should respect the date range filter", func() {
				jan := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
				jun := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
				mustIndicator(ctx, "air_quality", 10, jan, zone.ID, source.ID)
				mustIndicator(ctx, "air_quality", 50, jun, zone.ID, source.ID)

				from := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
				labels, series, err := st.AveragesByZone(ctx, "air_quality", store.Filter{From: &from})
				Expect(err).NotTo(HaveOccurred())
				Expect(labels).To(Equal([]string{"Paris"}))
				Expect(series).To(Equal([]float64{50}))
			})
		})

		Describe("Trend", func() {
			It("should sum monthly buckets in ascending order", func() {
				for day := 1; day <= 3; day++ {
					mustIndicator(ctx, "co2", 10, time.Date(2025, 1, day, 0, 0, 0, 0, time.UTC), zone.ID, source.ID)
					mustIndicator(ctx, "co2", 10, time.Date(2025, 2, day, 0, 0, 0, 0, time.UTC), zone.ID, source.ID)
				}

				labels, series, err := st.Trend(ctx, "co2", nil, store.PeriodMonthly)
				Expect(err).NotTo(HaveOccurred())
				Expect(labels).To(Equal([]string{"2025-01", "2025-02"}))
				Expect(series).To(Equal([]float64{30, 30}))
			})

			It("should bucket daily", func() {
				mustIndicator(ctx, "co2", 5, time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC), zone.ID, source.ID)
				mustIndicator(ctx, "co2", 7, time.Date(2025, 3, 1, 20, 0, 0, 0, time.UTC), zone.ID, source.ID)
				mustIndicator(ctx, "co2", 2, time.Date(2025, 3, 2, 8, 0, 0, 0, time.UTC), zone.ID, source.ID)

				labels, series, err := st.Trend(ctx, "co2", nil, store.PeriodDaily)
				Expect(err).NotTo(HaveOccurred())
				Expect(labels).To(Equal([]string{"2025-03-01", "2025-03-02"}))
				Expect(series).To(Equal([]float64{12, 2}))
			})

			It("should bucket weekly with ISO year-week keys", func() {
				// 2024-12-30 falls in ISO week 2025-W01.
				mustIndicator(ctx, "co2", 3, time.Date(2024, 12, 30, 0, 0, 0, 0, time.UTC), zone.ID, source.ID)
				mustIndicator(ctx, "co2", 4, time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), zone.ID, source.ID)
				mustIndicator(ctx, "co2", 9, time.Date(2025, 1, 8, 0, 0, 0, 0, time.UTC), zone.ID, source.ID)

				labels, series, err := st.Trend(ctx, "co2", nil, store.PeriodWeekly)
				Expect(err).NotTo(HaveOccurred())
				Expect(labels).To(Equal([]string{"2025-W01", "2025-W02"}))
				Expect(series).To(Equal([]float64{7, 9}))
			})

			It("should produce the same bucket keys as Period.Key", func() {
				instants := []time.Time{
					time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC),
					time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
					time.Date(2024, 12, 30, 23, 0, 0, 0, time.UTC),
				}
				for _, ts := range instants {
					mustIndicator(ctx, "co2", 1, ts, zone.ID, source.ID)
				}

				for _, period := range []store.Period{store.PeriodDaily, store.PeriodWeekly, store.PeriodMonthly} {
					expected := map[string]struct{}{}
					for _, ts := range instants {
						expected[period.Key(ts)] = struct{}{}
					}

					labels, _, err := st.Trend(ctx, "co2", nil, period)
					Expect(err).NotTo(HaveOccurred())
					Expect(labels).To(HaveLen(len(expected)))
					for _, label := range labels {
						Expect(expected).To(HaveKey(label))
					}
				}
			})

			It("should restrict to a zone when requested", func() {
				lyon := mustZone(ctx, "Lyon")
				ts := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
				mustIndicator(ctx, "co2", 10, ts, zone.ID, source.ID)
				mustIndicator(ctx, "co2", 99, ts, lyon.ID, source.ID)

				labels, series, err := st.Trend(ctx, "co2", &zone.ID, store.PeriodMonthly)
				Expect(err).NotTo(HaveOccurred())
				Expect(labels).To(Equal([]string{"2025-01"}))
				Expect(series).To(Equal([]float64{10}))
			})

			It("should return empty parallel slices when nothing matches", func() {
				labels, series, err := st.Trend(ctx, "co2", nil, store.PeriodMonthly)
				Expect(err).NotTo(HaveOccurred())
				Expect(labels).To(BeEmpty())
				Expect(series).To(BeEmpty())
			})
		})

		Describe("Summary", func() {
			It("should compute count, average, min, and max per kind", func() {
				ts := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
				for _, v := range []float64{5, 10, 15} {
					mustIndicator(ctx, "co2", v, ts, zone.ID, source.ID)
				}
				mustIndicator(ctx, "air_quality", 42, ts, zone.ID, source.ID)

				summaries, err := st.Summary(ctx, store.Filter{})
				Expect(err).NotTo(HaveOccurred())
				Expect(summaries).To(HaveLen(2))

				// Ordered by kind ascending.
				Expect(summaries[0].Kind).To(Equal("air_quality"))
				Expect(summaries[1].Kind).To(Equal("co2"))

				co2 := summaries[1]
				Expect(co2.Count).To(Equal(int64(3)))
				Expect(co2.Average).To(Equal(10.0))
				Expect(co2.Min).To(Equal(5.0))
				Expect(co2.Max).To(Equal(15.0))
			})

			It("should sum counts to the matching total", func() {
				ts := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
				for i := range 7 {
					kind := "co2"
					if i%2 == 0 {
						kind = "energy"
					}
					mustIndicator(ctx, kind, float64(i), ts, zone.ID, source.ID)
				}

				summaries, err := st.Summary(ctx, store.Filter{})
				Expect(err).NotTo(HaveOccurred())

				var total int64
				for _, row := range summaries {
					total += row.Count
				}
				Expect(total).To(Equal(int64(7)))
			})

			It("should return an empty slice for no matches", func() {
				summaries, err := st.Summary(ctx, store.Filter{Kind: "nothing"})
				Expect(err).NotTo(HaveOccurred())
				Expect(summaries).To(BeEmpty())
			})

			It("should honor the filter", func() {
				jan := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
				jun := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
				mustIndicator(ctx, "co2", 100, jan, zone.ID, source.ID)
				mustIndicator(ctx, "co2", 200, jun, zone.ID, source.ID)

				from := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
				summaries, err := st.Summary(ctx, store.Filter{From: &from})
				Expect(err).NotTo(HaveOccurred())
				Expect(summaries).To(HaveLen(1))
				Expect(summaries[0].Count).To(Equal(int64(1)))
				Expect(summaries[0].Average).To(Equal(200.0))
			})
		})
	})
})

var _ = Describe("Indicator lifecycle", func() {
	var (
		ctx    context.Context
		zone   *store.Zone
		source *store.Source
	)

	BeforeEach(func() {
		ctx = context.Background()
		resetTables()
		zone = mustZone(ctx, "Paris")
		source = mustSource(ctx, "Atmo France")
	})

	It("should create, read, update, and delete an indicator", func() {
		created := mustIndicator(ctx, "co2", 12.5, time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC), zone.ID, source.ID)
		Expect(created.ID).NotTo(BeZero())

		fetched, err := st.GetIndicator(ctx, created.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(fetched.Value).To(Equal(12.5))

		newValue := 20.0
		updated, err := st.UpdateIndicator(ctx, created.ID, store.IndicatorUpdate{Value: &newValue})
		Expect(err).NotTo(HaveOccurred())
		Expect(updated.Value).To(Equal(20.0))
		Expect(updated.Kind).To(Equal("co2"))

		Expect(st.DeleteIndicator(ctx, created.ID)).To(Succeed())

		_, err = st.GetIndicator(ctx, created.ID)
		Expect(errors.Is(err, store.ErrNotFound)).To(BeTrue())
	})

	It("should store timestamps normalized to UTC", func() {
		paris := time.FixedZone("CEST", 2*3600)
		local := time.Date(2025, 7, 1, 14, 30, 0, 0, paris)
		created := mustIndicator(ctx, "co2", 1, local, zone.ID, source.ID)

		fetched, err := st.GetIndicator(ctx, created.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(fetched.Timestamp.UTC().Hour()).To(Equal(12))
	})

	It("should round-trip the attributes map", func() {
		indicator := &store.Indicator{
			Kind:      "air_quality",
			Value:     8,
			Unit:      "µg/m³",
			Timestamp: time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
			Attributes: map[string]any{
				"station":  "A-12",
				"pm_ratio": 0.7,
			},
			ZoneID:   zone.ID,
			SourceID: source.ID,
		}
		Expect(st.CreateIndicator(ctx, indicator)).To(Succeed())

		fetched, err := st.GetIndicator(ctx, indicator.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(fetched.Attributes).To(HaveKeyWithValue("station", "A-12"))
		Expect(fetched.Attributes).To(HaveKeyWithValue("pm_ratio", 0.7))
	})

	It("should reject an indicator referencing a missing zone", func() {
		indicator := &store.Indicator{
			Kind:      "co2",
			Value:     1,
			Unit:      "kg",
			Timestamp: time.Now().UTC(),
			ZoneID:    zone.ID + 1000,
			SourceID:  source.ID,
		}
		err := st.CreateIndicator(ctx, indicator)
		Expect(errors.Is(err, store.ErrReferentialIntegrity)).To(BeTrue())
	})

	It("should reject an indicator referencing a missing source", func() {
		indicator := &store.Indicator{
			Kind:      "co2",
			Value:     1,
			Unit:      "kg",
			Timestamp: time.Now().UTC(),
			ZoneID:    zone.ID,
			SourceID:  source.ID + 1000,
		}
		err := st.CreateIndicator(ctx, indicator)
		Expect(errors.Is(err, store.ErrReferentialIntegrity)).To(BeTrue())
	})

	It("should reject moving an indicator to a missing zone", func() {
		created := mustIndicator(ctx, "co2", 1, time.Now().UTC(), zone.ID, source.ID)

		missing := zone.ID + 1000
		_, err := st.UpdateIndicator(ctx, created.ID, store.IndicatorUpdate{ZoneID: &missing})
		Expect(errors.Is(err, store.ErrReferentialIntegrity)).To(BeTrue())
	})

	It("should report not found for operations on absent ids", func() {
		_, err := st.GetIndicator(ctx, 424242)
		Expect(errors.Is(err, store.ErrNotFound)).To(BeTrue())

		value := 1.0
		_, err = st.UpdateIndicator(ctx, 424242, store.IndicatorUpdate{Value: &value})
		Expect(errors.Is(err, store.ErrNotFound)).To(BeTrue())

		err = st.DeleteIndicator(ctx, 424242)
		Expect(errors.Is(err, store.ErrNotFound)).To(BeTrue())
	})
})

var _ = Describe("Zones and sources", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
		resetTables()
	})

	It("should refuse deleting a zone that still has indicators", func() {
		zone := mustZone(ctx, "Paris")
		source := mustSource(ctx, "Atmo France")
		mustIndicator(ctx, "co2", 1, time.Now().UTC(), zone.ID, source.ID)

		err := st.DeleteZone(ctx, zone.ID)
		Expect(errors.Is(err, store.ErrReferentialIntegrity)).To(BeTrue())
	})

	It("should refuse deleting a source that still has indicators", func() {
		zone := mustZone(ctx, "Paris")
		source := mustSource(ctx, "Atmo France")
		mustIndicator(ctx, "co2", 1, time.Now().UTC(), zone.ID, source.ID)

		err := st.DeleteSource(ctx, source.ID)
		Expect(errors.Is(err, store.ErrReferentialIntegrity)).To(BeTrue())
	})

	It("should delete an unreferenced zone", func() {
		zone := mustZone(ctx, "Paris")
		Expect(st.DeleteZone(ctx, zone.ID)).To(Succeed())

		_, err := st.GetZone(ctx, zone.ID)
		Expect(errors.Is(err, store.ErrNotFound)).To(BeTrue())
	})

	It("should enforce source name uniqueness", func() {
		mustSource(ctx, "Atmo France")
		err := st.CreateSource(ctx, &store.Source{Name: "Atmo France"})
		Expect(errors.Is(err, store.ErrAlreadyExists)).To(BeTrue())
	})

	It("should find or create zones by name", func() {
		first := &store.Zone{Name: "Paris"}
		Expect(st.FindOrCreateZone(ctx, first)).To(Succeed())

		second := &store.Zone{Name: "Paris"}
		Expect(st.FindOrCreateZone(ctx, second)).To(Succeed())
		Expect(second.ID).To(Equal(first.ID))
	})

	It("should apply partial updates", func() {
		zone := mustZone(ctx, "Paris")

		postal := "75001"
		updated, err := st.UpdateZone(ctx, zone.ID, store.ZoneUpdate{PostalCode: &postal})
		Expect(err).NotTo(HaveOccurred())
		Expect(updated.Name).To(Equal("Paris"))
		Expect(updated.PostalCode).NotTo(BeNil())
		Expect(*updated.PostalCode).To(Equal("75001"))
	})
})

var _ = Describe("Users", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
		resetTables()
	})

	It("should create and look up a user by username", func() {
		user := &store.User{
			Email:          "marie@example.org",
			Username:       "marie",
			HashedPassword: "hash",
			Role:           store.RoleUser,
			IsActive:       true,
		}
		Expect(st.CreateUser(ctx, user)).To(Succeed())

		fetched, err := st.GetUserByUsername(ctx, "marie")
		Expect(err).NotTo(HaveOccurred())
		Expect(fetched.Email).To(Equal("marie@example.org"))
	})

	It("should enforce username uniqueness", func() {
		first := &store.User{Email: "a@example.org", Username: "dup", HashedPassword: "h", Role: store.RoleUser}
		Expect(st.CreateUser(ctx, first)).To(Succeed())

		second := &store.User{Email: "b@example.org", Username: "dup", HashedPassword: "h", Role: store.RoleUser}
		err := st.CreateUser(ctx, second)
		Expect(errors.Is(err, store.ErrAlreadyExists)).To(BeTrue())
	})

	It("should promote a user to admin", func() {
		user := &store.User{Email: "a@example.org", Username: "promo", HashedPassword: "h", Role: store.RoleUser}
		Expect(st.CreateUser(ctx, user)).To(Succeed())

		role := store.RoleAdmin
		updated, err := st.UpdateUser(ctx, user.ID, store.UserUpdate{Role: &role})
		Expect(err).NotTo(HaveOccurred())
		Expect(updated.Role).To(Equal(store.RoleAdmin))
	})

	It("should reject an unknown role", func() {
		user := &store.User{Email: "a@example.org", Username: "badrole", HashedPassword: "h", Role: store.RoleUser}
		Expect(st.CreateUser(ctx, user)).To(Succeed())

		role := "superuser"
		_, err := st.UpdateUser(ctx, user.ID, store.UserUpdate{Role: &role})
		Expect(errors.Is(err, store.ErrInvalidArgument)).To(BeTrue())
	})

})
