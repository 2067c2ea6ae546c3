package service

/*
 Copyright 2019 - 2025 Crunchy Data Solutions, Inc.
 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at
      http://www.apache.org/licenses/LICENSE-2.0
 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

import (
	"fmt"
	"net/http"
)

// viewerTemplate is a minimal Leaflet page showing one layer and
// addressing its tiles at their slippy-map URL. The actual 2D map client
// is not this server's concern; this is just enough HTML to exercise the
// tile endpoints from a browser during development.
const viewerTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>railmap</title>
<link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css">
<style>html,body,#map{height:100%%;margin:0}</style>
</head>
<body>
<div id="map"></div>
<script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
<script>
var map = L.map('map').setView([54.78, 9.43], 9);
L.tileLayer('/%s/{z}/{x}/{y}.png', {
  tileSize: 256,
  maxZoom: 17,
  attribution: 'railmap'
}).addTo(map);
</script>
</body>
</html>
`

// handleRoot serves the minimal HTML map viewer at GET /.
func (s *Service) handleRoot(w http.ResponseWriter, r *http.Request) *appError {
	names := layerNames(s.Atlas.Current())

	defaultLayer := "el"
	if len(names) > 0 {
		found := false
		for _, n := range names {
			if n == defaultLayer {
				found = true
				break
			}
		}
		if !found {
			defaultLayer = names[0]
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, viewerTemplate, defaultLayer)
	return nil
}
