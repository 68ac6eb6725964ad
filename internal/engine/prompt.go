package engine

// LLM prompt templates: data only, no logic.

// translateSystemPrompt is the system message for every translation call.
const translateSystemPrompt = "You are a helpful assistant."

// translatePrompt asks for a Korean translation laid out for Notion.
// Args: joined English transcript.
const translatePrompt = `당신은 20년차 컴퓨터 과학 및 프로그래밍 전문가입니다.` +
	`다음 문서를 한국어로 자연스럽게 번역해 주시되, 노션에 적합한 형식으로 깔끔하게 정리해 주세요. ` +
	`1. 문서의 주요 내용과 섹션을 명확하게 구분하고, 제목과 소제목을 사용하여 구조화해 주세요. ` +
	`2. 각 섹션은 필요한 경우 체크리스트, 표, 태그 등 노션의 다양한 기능을 활용하여 정리해 주시면 좋겠습니다. ` +
	`3. 문서의 각 부분은 논리적이고 일관되게 배열해 주세요.` +
	`4. 또한 세부적인 내용을 너무 요약하지말고 직관적으로 개념을 알 수 있게 자세히 써주세요.

%s`
