/*
Command serve runs the candidate classification server.

  Usage: serve [options]
    -a="": listen address, overrides server.addr
    -c="": config file
    -d="": data root, overrides server.data_root
    -p="": psrcat database, overrides catalog.path
    -v=false: display version and copyright

The server offers a JSON API over HTTP for viewing and classifying the
candidates of observation directories under the data root.  Every response
is an envelope

  {"status_code": 200, "status": "OK", "request_id": "...", "data": ...}

with "error" in place of "data" when the request fails.  Request bodies are
JSON and are checked before use; a malformed body gets 400 and a body with
a bad value gets 422 with a message naming the field.  Paths in requests
are relative to the data root and may not leave it.

Files

  GET  /api/files/directories           directories under the data root
  GET  /api/files/image?path=P          a plot file
  POST /api/files/save-classification   {base_dir, filename, user}
  POST /api/files/load-classification   {base_dir, filename}

Candidates

  POST /api/candidates/load             {csv_path, base_dir}
  POST /api/candidates/filter           {base_dir, utc, types, sort_by, sort_order}
  PUT  /api/candidates/classify         {base_dir, line_num, candidate_type}
  POST /api/candidates/bulk-classify    {base_dir, line_nums, candidate_type,
                                         only_same_beam, beam_name}
  GET  /api/candidates/B/similar/L      harmonically similar candidates
  GET  /api/candidates/B/known/L        known pulsars near candidate L
  GET  /api/candidates/B/stats          counts by classification
  GET  /api/candidates/B/all            all candidates
  GET  /api/candidates/B/metafile?utc=U beam layout of an observation

Loading a candidate file starts a session named by its base directory B,
replacing any earlier session of that name.  Harmonic similarity is
computed per UTC at load time.  Sessions are held in memory only; save the
classification to keep it.  Saving writes a short file with columns
beamid, utc, png and classification, and beside it a file ending _full.csv
holding the input columns with the classification filled in.  When user is
given it replaces a trailing _user of the file name.

Known pulsar lookups search the whole catalog within
catalog.search_radius_arcmin of the candidate.  If the catalog cannot be
read at startup the server runs anyway and these lookups report 503.

Configuration is described in the documentation of command candyweb,
   go doc github.com/vivekvenkris/CandyWeb
*/
package main
