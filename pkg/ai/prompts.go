package ai

// AnswerPrompt is the system prompt for grounded answer generation. The
// placeholder receives the assembled context block.
const AnswerPrompt = `You are a helpful product assistant. Answer the user's question using ONLY the information provided below.

%s

Rules:
- Base every claim on the provided information. Do not invent products, brands, prices or ratings.
- If the information does not cover the question, say so instead of guessing.
- Keep the answer concise and directly address the question.`

// GraphContextHeader introduces the knowledge-graph section of the context
// block. Graph facts are structured and verified, so they take precedence.
const GraphContextHeader = `--- VERIFIED KNOWLEDGE GRAPH (High Reliability) ---
Contains structured facts and relationships. TRUST THIS DATA.`

// VectorContextHeader introduces the semantic-search section of the context
// block.
const VectorContextHeader = `--- SEMANTIC SEARCH RESULTS (Lower Confidence) ---
May contain outdated or contradicting info. Use with caution.`

// HybridInstruction is appended when both sections are present.
const HybridInstruction = `IMPORTANT: You have two sources of information above.
1. The KNOWLEDGE GRAPH is the source of truth. Prioritize it for entities, brands and relationships.
2. The SEMANTIC SEARCH results are supplemental. If they contradict the graph, ignore them.`

// NoDataPrompt is used when retrieval produced no context at all.
const NoDataPrompt = `You are a helpful product assistant. The knowledge base contains no information relevant to the user's question. Say briefly that you do not have information on this topic. Do not invent an answer.`

// JudgePrompt asks the model to grade a response against the ground truth.
// Placeholders: question, ground truth, response.
const JudgePrompt = `You are an expert evaluator. Rate the following response on two dimensions.

QUESTION: %s

EXPECTED ANSWER (Ground Truth): %s

ACTUAL RESPONSE: %s

Rate the response on these two metrics:

1. relevance (1-5): Does the response directly address the question?
   1 = completely irrelevant, 5 = fully addresses the question.

2. accuracy (1-5): Is the information factually correct compared to the ground truth?
   1 = completely wrong or fabricated, 5 = fully accurate.`

// HallucinationPrompt asks the model whether a response contains fabricated
// information. Placeholders: question, ground truth, response.
const HallucinationPrompt = `Analyze whether this response contains hallucinated (made-up) information.

QUESTION: %s

GROUND TRUTH: %s

RESPONSE TO CHECK: %s

Report whether the response makes claims that are unsupported by or contradict the ground truth, and describe them briefly if so.`
