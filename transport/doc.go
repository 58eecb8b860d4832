// Package transport exposes relay sessions over WebSocket. Each connection
// owns one session; frames are JSON objects:
//
//	client -> server  {"type":"input","text":"I lost my keys"}
//	                  {"type":"image","name":"frame-1","data":"<base64>"}
//	                  {"type":"transfer","name":"Finder"}
//	                  {"type":"cancel"}
//	server -> client  {"type":"ready","session":"...","agent":"Greeting"}
//	                  {"type":"item","agent":"Greeting","item_id":"...","text":"..."}
//	                  {"type":"image","ref":"artifact://frame-1"}
//	                  {"type":"transferred","agent":"Finder","text":"Transferring to Finder."}
//	                  {"type":"error","error":"..."}
package transport
