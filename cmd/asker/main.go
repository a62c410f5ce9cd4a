// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/poiesic/answerit"
)

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
}

func main() {
	engine, err := answerit.NewEngine("./qa_db")
	if err != nil {
		panic(err)
	}
	defer engine.Close()

	query := "How does billing work?"
	if len(os.Args) > 1 {
		query = strings.Join(os.Args[1:], " ")
	}

	response, err := engine.Ask(context.Background(), query, nil)
	if err != nil {
		panic(err)
	}

	fmt.Println(response.Answer)
	fmt.Printf("\n[%s/%s] confidence=%.2f passages=%d\n",
		response.Route.Classification, response.Route.Model,
		response.Confidence, len(response.Passages))
}
