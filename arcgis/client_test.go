package arcgis_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-test/deep"

	"github.com/atlasdatatech/geolayer/arcgis"
)

func newTestClient() *arcgis.Client {
	return arcgis.NewClient(arcgis.ClientConfig{RetryMax: 0})
}

func TestClientQuery(t *testing.T) {
	var got map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/MapServer/3/query" {
			t.Errorf("path, expected /MapServer/3/query got %v", r.URL.Path)
		}
		got = map[string]string{}
		for k := range r.URL.Query() {
			got[k] = r.URL.Query().Get(k)
		}
		w.Write([]byte(`{"objectIdFieldName":"OBJECTID","exceededTransferLimit":true,
			"features":[{"attributes":{"OBJECTID":9007199254740993,"NAME":"a"}}]}`))
	}))
	defer srv.Close()

	fs, err := newTestClient().Query(context.Background(), srv.URL+"/MapServer/3?token=abc", arcgis.Query{
		Where:     "OBJECTID>-1",
		OutFields: "NAME,OBJECTID",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expectedParams := map[string]string{
		"where":          "OBJECTID>-1",
		"outFields":      "NAME,OBJECTID",
		"returnGeometry": "false",
		"f":              "json",
		"token":          "abc",
	}
	if diff := deep.Equal(got, expectedParams); diff != nil {
		t.Errorf("query params: %v", diff)
	}

	if !fs.ExceededTransferLimit {
		t.Errorf("exceededTransferLimit, expected true")
	}
	if len(fs.Features) != 1 {
		t.Fatalf("features, expected 1 got %v", len(fs.Features))
	}
	oid, ok := fs.Features[0].Attributes["OBJECTID"].(json.Number)
	if !ok || oid.String() != "9007199254740993" {
		t.Errorf("object id, expected exact json.Number got %#v", fs.Features[0].Attributes["OBJECTID"])
	}
}

func TestClientQueryErrors(t *testing.T) {
	type tcase struct {
		status int
		body   string
		check  func(t *testing.T, err error)
	}

	tests := map[string]tcase{
		"error envelope": {
			status: http.StatusOK,
			body:   `{"error":{"code":400,"message":"Invalid query","details":["where"]}}`,
			check: func(t *testing.T, err error) {
				var se arcgis.ErrService
				if !errors.As(err, &se) {
					t.Fatalf("expected ErrService got %v", err)
				}
				if se.Code != 400 || se.Message != "Invalid query" {
					t.Errorf("unexpected envelope %+v", se)
				}
			},
		},
		"missing features": {
			status: http.StatusOK,
			body:   `{"objectIdFieldName":"OBJECTID"}`,
			check: func(t *testing.T, err error) {
				var me arcgis.ErrMissingFeatures
				if !errors.As(err, &me) {
					t.Fatalf("expected ErrMissingFeatures got %v", err)
				}
			},
		},
		"not found": {
			status: http.StatusNotFound,
			body:   `nope`,
			check: func(t *testing.T, err error) {
				var se arcgis.ErrStatus
				if !errors.As(err, &se) {
					t.Fatalf("expected ErrStatus got %v", err)
				}
				if se.StatusCode != http.StatusNotFound {
					t.Errorf("status, expected 404 got %v", se.StatusCode)
				}
			},
		},
		"garbage": {
			status: http.StatusOK,
			body:   `{"features":[`,
			check: func(t *testing.T, err error) {
				if err == nil {
					t.Fatal("expected decode error")
				}
			},
		},
	}

	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			_, err := newTestClient().Query(context.Background(), srv.URL+"/FeatureServer/0", arcgis.Query{})
			tc.check(t, err)
		})
	}
}

func TestClientDescribe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("f") != "json" {
			t.Errorf("f, expected json got %v", r.URL.Query().Get("f"))
		}
		w.Write([]byte(`{
			"currentVersion": 10.81,
			"id": 2,
			"name": "Rivers",
			"type": "Feature Layer",
			"geometryType": "esriGeometryPolyline",
			"minScale": 500000,
			"maxScale": 0,
			"effectiveMinScale": 250000,
			"extent": {"xmin": -10, "ymin": -5, "xmax": 10, "ymax": 5, "spatialReference": {"wkid": 4326}},
			"displayField": "NAME",
			"fields": [
				{"name": "FID", "type": "esriFieldTypeOID", "alias": "FID"},
				{"name": "NAME", "type": "esriFieldTypeString"}
			]
		}`))
	}))
	defer srv.Close()

	d, err := newTestClient().Describe(context.Background(), srv.URL+"/MapServer/2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if d.CurrentVersion != 10.81 || d.Name != "Rivers" || !d.IsTabular() {
		t.Errorf("unexpected description %+v", d)
	}
	if d.EffectiveMinScale == nil || *d.EffectiveMinScale != 250000 {
		t.Errorf("effectiveMinScale, expected 250000 got %v", d.EffectiveMinScale)
	}
	if d.EffectiveMaxScale != nil {
		t.Errorf("effectiveMaxScale, expected nil got %v", *d.EffectiveMaxScale)
	}
	expectedFields := []arcgis.Field{
		{Name: "FID", Type: arcgis.FieldTypeOID, Alias: "FID"},
		{Name: "NAME", Type: arcgis.FieldTypeString},
	}
	if diff := deep.Equal(d.Fields, expectedFields); diff != nil {
		t.Errorf("fields: %v", diff)
	}
	if d.Extent == nil || d.Extent.SpatialReference.WKID != 4326 {
		t.Errorf("unexpected extent %+v", d.Extent)
	}
}

func TestParseURLIndex(t *testing.T) {
	type tcase struct {
		in    string
		root  string
		index int
		ok    bool
	}

	tests := []tcase{
		{"https://host/arcgis/rest/services/X/MapServer/4", "https://host/arcgis/rest/services/X/MapServer", 4, true},
		{"https://host/arcgis/rest/services/X/FeatureServer/0/", "https://host/arcgis/rest/services/X/FeatureServer", 0, true},
		{"https://host/arcgis/rest/services/X/MapServer", "https://host/arcgis/rest/services/X/MapServer", 0, false},
		{"https://host/s/MapServer/12?token=t", "https://host/s/MapServer?token=t", 12, true},
	}

	for i, tc := range tests {
		root, idx, ok := arcgis.ParseURLIndex(tc.in)
		if root != tc.root || idx != tc.index || ok != tc.ok {
			t.Errorf("[%v] expected (%v, %v, %v) got (%v, %v, %v)", i, tc.root, tc.index, tc.ok, root, idx, ok)
		}
	}

	if got := arcgis.SublayerURL("https://host/s/MapServer/", 7); got != "https://host/s/MapServer/7" {
		t.Errorf("sublayer url, got %v", got)
	}
}
