/*
Copyright 2026 The Chunkq Authors

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

package queue

// Item is a single dequeued record.
type Item struct {
	// Ts is the producer-assigned timestamp, seconds since the Unix
	// epoch, taken from the wall clock at the moment the record was
	// framed.
	Ts uint64
	// Data is the opaque payload. It is a copy; the caller owns it.
	Data []byte
}
